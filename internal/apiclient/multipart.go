package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
)

// Multipart is a form body with text fields and file parts. Passing one as a
// request body sends multipart/form-data with its own boundary; the JSON
// content type is never set.
type Multipart struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	field, filename string
	r               io.Reader
}

func NewMultipart() *Multipart {
	return &Multipart{}
}

// AddField appends a text field. Repeated names are sent in order.
func (m *Multipart) AddField(name, value string) *Multipart {
	m.fields = append(m.fields, formField{name: name, value: value})
	return m
}

// AddFieldIf appends a text field only when value is non-empty.
func (m *Multipart) AddFieldIf(name, value string) *Multipart {
	if value == "" {
		return m
	}
	return m.AddField(name, value)
}

// AddInt appends an integer field.
func (m *Multipart) AddInt(name string, v int64) *Multipart {
	return m.AddField(name, strconv.FormatInt(v, 10))
}

// AddBool appends a boolean field.
func (m *Multipart) AddBool(name string, v bool) *Multipart {
	return m.AddField(name, strconv.FormatBool(v))
}

// AddFile appends a file part read from r when the body is encoded.
func (m *Multipart) AddFile(field, filename string, r io.Reader) *Multipart {
	m.files = append(m.files, formFile{field: field, filename: filename, r: r})
	return m
}

// Len is the number of parts.
func (m *Multipart) Len() int {
	return len(m.fields) + len(m.files)
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	for _, f := range m.files {
		part, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", f.field, err)
		}
		if _, err := io.Copy(part, f.r); err != nil {
			return nil, "", fmt.Errorf("copy file %s: %w", f.filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
