package app

import (
	"sort"

	"github.com/pkg/errors"
)

// RunJobNow triggers a background job immediately by name
func (a *Application) RunJobNow(name string) error {
	job, ok := a.jobs()[name]
	if !ok {
		return errors.Errorf("unknown job %q", name)
	}
	job()
	return nil
}

// JobNames lists the jobs accepted by RunJobNow
func (a *Application) JobNames() []string {
	names := make([]string, 0, len(a.jobs()))
	for name := range a.jobs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *Application) jobs() map[string]func() {
	return map[string]func(){
		JobCompactCart: a.SchedCompactCartTask,
		JobStorePing:   a.SchedStorePingTask,
	}
}
