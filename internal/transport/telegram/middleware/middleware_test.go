package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	store map[string]interface{}
}

func (f *fakeContext) Chat() *tele.Chat { return &tele.Chat{ID: 1} }

func (f *fakeContext) Callback() *tele.Callback { return nil }

func (f *fakeContext) Message() *tele.Message { return &tele.Message{Text: "/dashboard"} }

func (f *fakeContext) Get(key string) interface{} { return f.store[key] }

func (f *fakeContext) Set(key string, val interface{}) { f.store[key] = val }

func TestLogger_SetsRqID(t *testing.T) {
	c := &fakeContext{store: map[string]interface{}{}}

	var seen string
	handler := Logger()(func(c tele.Context) error {
		seen, _ = c.Get("rqID").(string)
		return nil
	})

	require.NoError(t, handler(c))
	assert.NotEmpty(t, seen)
	assert.Len(t, seen, 36)
}
