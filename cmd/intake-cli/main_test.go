package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"property-intake/internal/chat"
	"property-intake/internal/model"
)

func stateWith(q model.Question) (chat.State, string) {
	f := &chat.MessageFactory{
		NewID: func() string { return "msg-1" },
		Now:   time.Now,
	}
	msg := f.Question(q)
	return chat.Reduce(chat.InitialState(), chat.AddMessage{Message: msg}), msg.ID
}

func TestParseInput(t *testing.T) {
	notes, notesID := stateWith(model.Question{ID: "notes", Text: "Anything else?", Control: model.TextControl{}})
	reqType, reqTypeID := stateWith(model.Question{
		ID:      "req_type",
		Text:    "Buy or rent?",
		Control: model.RadioControl{Options: []model.Option{{Value: "buy", Label: "Buy"}, {Value: "rent", Label: "Rent"}}},
	})

	tests := []struct {
		name  string
		state chat.State
		line  string
		want  input
	}{
		{"text question takes the line", notes, "near a park", input{messageID: notesID, answer: "near a park"}},
		{"say forces free text", notes, "/say 3bhk in Indiranagar", input{text: "3bhk in Indiranagar"}},
		{"bare say", notes, "/say", input{text: ""}},
		{"choice answer", reqType, "rent", input{messageID: reqTypeID, answer: "rent"}},
		{"unparseable answer is free text", reqType, "villa in whitefield", input{text: "villa in whitefield"}},
		{"no active question", chat.InitialState(), "hello", input{text: "hello"}},
		{"say prefix needs a space", notes, "/sayhello", input{messageID: notesID, answer: "/sayhello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseInput(tt.state, tt.line))
		})
	}
}
