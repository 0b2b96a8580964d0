package domain

var Tables = []interface{}{
	&BlobEntry{},
}
