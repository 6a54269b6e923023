package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/template-marketplace/pkg/helpers"
)

type sent struct{ to, subject, text, html string }

type fakeSender struct {
	msgs []sent
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, sent{to, subject, text, html})
	return nil
}

func newWorker(s *fakeSender) *worker {
	return &worker{Sender: s, Logger: helpers.NewDiscardLogger()}
}

func TestHandle_Template(t *testing.T) {
	s := &fakeSender{}
	out := newWorker(s).handle(context.Background(),
		[]byte(`{"to":"ada@example.com","template":"Welcome","data":{"Name":"Ada","CompanyName":"Acme"}}`))

	assert.Equal(t, ack, out)
	if assert.Len(t, s.msgs, 1) {
		assert.Equal(t, "ada@example.com", s.msgs[0].to)
		assert.Equal(t, "Welcome to Acme, Ada", s.msgs[0].subject)
		assert.NotEmpty(t, s.msgs[0].html)
	}
}

func TestHandle_Raw(t *testing.T) {
	s := &fakeSender{}
	out := newWorker(s).handle(context.Background(), []byte(`{"to":"ada@example.com","subject":"Hi","text":"hello"}`))
	assert.Equal(t, ack, out)
	assert.Equal(t, "hello", s.msgs[0].text)
}

func TestHandle_Rejects(t *testing.T) {
	for name, body := range map[string]string{
		"malformed":   `{`,
		"no to":       `{"template":"welcome"}`,
		"unknown tpl": `{"to":"a@b.co","template":"invoice"}`,
		"raw no body": `{"to":"a@b.co","subject":"Hi"}`,
	} {
		t.Run(name, func(t *testing.T) {
			s := &fakeSender{}
			assert.Equal(t, reject, newWorker(s).handle(context.Background(), []byte(body)))
			assert.Empty(t, s.msgs)
		})
	}
}

func TestHandle_SendFailureRetries(t *testing.T) {
	s := &fakeSender{err: errors.New("mailgun down")}
	out := newWorker(s).handle(context.Background(), []byte(`{"to":"a@b.co","subject":"Hi","text":"x"}`))
	assert.Equal(t, retry, out)
}
