package schema

import (
	"errors"
	"strings"
	"testing"
)

const personSchema = `{
	"type": "object",
	"required": ["name", "age"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"age": {"type": "integer", "minimum": 0}
	}
}`

func TestValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", `{"name":"Ada","age":36}`, false},
		{"missing field", `{"name":"Ada"}`, true},
		{"wrong type", `{"name":"Ada","age":"old"}`, true},
		{"empty name", `{"name":"","age":1}`, true},
		{"not json", `{name`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(personSchema, []byte(tt.doc))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("Validate() error = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestValidate_BadSchema(t *testing.T) {
	err := NewValidator().Validate(`{"type": 12}`, []byte(`{}`))
	if err == nil || errors.Is(err, ErrInvalid) {
		t.Errorf("Validate() error = %v, want schema definition error", err)
	}
}

func TestValidate_CachesSchema(t *testing.T) {
	v := NewValidator()
	_ = v.Validate(personSchema, []byte(`{}`))
	_ = v.Validate(personSchema, []byte(`{}`))

	count := 0
	v.cache.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count != 1 {
		t.Errorf("cache entries = %d, want 1", count)
	}
}

func TestSummarize(t *testing.T) {
	got := summarize([]string{"a", "b", "c", "d", "e"})
	if !strings.HasPrefix(got, "a; b; c") || !strings.HasSuffix(got, "and 2 more") {
		t.Errorf("summarize() = %q", got)
	}
}
