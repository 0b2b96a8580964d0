// Package imagesrc turns image bytes into the references stored in
// Product.ImageURL and back.
package imagesrc

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
)

// MaxImageBytes bounds uploads and downloads.
const MaxImageBytes = 8 << 20

var ErrNotImage = errors.New("content is not an image")

// DataURL encodes data as a self-contained data: reference.
func DataURL(data []byte) (string, error) {
	mime, err := Sniff(data)
	if err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Sniff returns the image MIME type of data.
func Sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.Wrap(ErrNotImage, "empty content")
	}
	if len(data) > MaxImageBytes {
		return "", errors.Errorf("image of %d bytes exceeds %d", len(data), MaxImageBytes)
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", errors.Wrapf(ErrNotImage, "detected %s", mime.String())
	}
	return mime.String(), nil
}

// DecodeDataURL returns the bytes and MIME type of a base64 data: reference.
func DecodeDataURL(ref string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return nil, "", errors.New("not a data url")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", errors.New("data url is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.Wrap(err, "decode data url")
	}
	mime, err := Sniff(data)
	if err != nil {
		return nil, "", err
	}
	return data, mime, nil
}

// ErrTooLarge is returned when a download exceeds the fetch limit.
var ErrTooLarge = errors.Errorf("image exceeds %d bytes", MaxImageBytes)

// fetchLimit caps remote downloads.
var fetchLimit int64 = MaxImageBytes

var fetchClient = gout.New(&http.Client{Transport: cappedTransport{base: http.DefaultTransport}})

// cappedTransport refuses responses announcing more than fetchLimit bytes
// and cuts off bodies that stream past it.
type cappedTransport struct {
	base http.RoundTripper
}

func (t cappedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.ContentLength > fetchLimit {
		resp.Body.Close()
		return nil, ErrTooLarge
	}
	resp.Body = &cappedBody{ReadCloser: resp.Body, left: fetchLimit}
	return resp, nil
}

type cappedBody struct {
	io.ReadCloser
	left int64
}

func (b *cappedBody) Read(p []byte) (int, error) {
	if b.left <= 0 {
		var one [1]byte
		n, err := b.ReadCloser.Read(one[:])
		if n > 0 {
			return 0, ErrTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > b.left {
		p = p[:b.left]
	}
	n, err := b.ReadCloser.Read(p)
	b.left -= int64(n)
	return n, err
}

// Fetch downloads a remote image of at most MaxImageBytes.
func Fetch(ctx context.Context, url string) ([]byte, string, error) {
	var (
		body []byte
		code int
	)
	err := fetchClient.GET(url).
		WithContext(ctx).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return nil, "", errors.Wrapf(err, "fetch image %s", url)
	}
	if code != http.StatusOK {
		return nil, "", errors.Errorf("fetch image %s: status %d", url, code)
	}
	mime, err := Sniff(body)
	if err != nil {
		return nil, "", err
	}
	return body, mime, nil
}

// Load resolves an image reference, inline or remote, to its bytes.
func Load(ctx context.Context, ref string) ([]byte, string, error) {
	if strings.HasPrefix(ref, "data:") {
		return DecodeDataURL(ref)
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return Fetch(ctx, ref)
	}
	return nil, "", errors.Errorf("unsupported image reference %.32q", ref)
}
