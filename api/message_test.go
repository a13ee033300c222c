package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/riftcord/corebot/discord"
	"github.com/riftcord/corebot/ratelimit"
	"github.com/riftcord/corebot/transport"
)

// snowflakeAt constructs a synthetic snowflake whose embedded timestamp is
// t, mirroring discord.NewSnowflakeAt without needing cross-package test
// helper access.
func snowflakeAt(t time.Time) discord.Snowflake {
	ms := t.UnixMilli() - discord.Epoch
	return discord.Snowflake(uint64(ms) << 22)
}

// TestDeleteMessagesRejectsOldIDs checks that bulk-delete aborts
// client-side, before any request is sent, when a message ID is older than
// the platform's 14-day ceiling.
func TestDeleteMessagesRejectsOldIDs(t *testing.T) {
	c := &Client{}

	now := time.Now()
	old := snowflakeAt(now.Add(-20 * 24 * time.Hour))
	fresh := snowflakeAt(now.Add(-1 * time.Hour))

	err := c.DeleteMessages(context.Background(), discord.Snowflake(1), []discord.Snowflake{fresh, old}, "")
	if err != ErrMessageTooOld {
		t.Fatalf("expected ErrMessageTooOld, got %v", err)
	}
}

// recordingDoer captures the last request's content type and body so tests
// can assert on the wire shape without a real HTTP transport.
type recordingDoer struct {
	contentType string
	body        []byte
}

func (d *recordingDoer) Do(ctx context.Context, req transport.Request) (*http.Response, error) {
	d.contentType = req.Headers.Get("Content-Type")
	if req.Body != nil {
		d.body, _ = io.ReadAll(req.Body)
	}
	return &http.Response{
		StatusCode: 200,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader([]byte(`{"id":"1"}`))),
	}, nil
}

// TestSendMessageWithFilesUsesMultipart checks that SendMessage switches to
// a multipart/form-data body carrying both the JSON payload and the file
// contents once any File is attached.
func TestSendMessageWithFilesUsesMultipart(t *testing.T) {
	doer := &recordingDoer{}
	gov := ratelimit.New(doer, zerolog.Nop())
	defer gov.Close()

	c := NewClient("tok", gov)

	_, err := c.SendMessage(context.Background(), discord.Snowflake(1), SendMessageData{
		Content: "hi",
		Files:   []File{{Name: "a.txt", Reader: strings.NewReader("hello attachment")}},
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if !strings.HasPrefix(doer.contentType, "multipart/form-data") {
		t.Fatalf("expected multipart/form-data content type, got %q", doer.contentType)
	}
	if !strings.Contains(string(doer.body), "payload_json") {
		t.Fatalf("expected payload_json field in multipart body, got:\n%s", doer.body)
	}
	if !strings.Contains(string(doer.body), "hello attachment") {
		t.Fatalf("expected file contents in multipart body, got:\n%s", doer.body)
	}
}
