package transport

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleChatStream_EmitsNodeAndFinalEvents(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/chat/stream", chatMessageRequest{
		Content: "I'm a veteran logistics officer transitioning out of the military.", UserID: "u4", ConversationID: "c4",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: node")
	assert.Contains(t, body, "event: final")
	assert.Contains(t, body, "event: done\ndata: [DONE]\n\n")
	assert.True(t, strings.Index(body, "event: final") < strings.Index(body, "event: done"))
}

func TestHandleChatStream_MissingFieldsIsBadRequest(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/chat/stream", chatMessageRequest{Content: "hi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
