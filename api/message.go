package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/pkg/errors"

	"github.com/riftcord/corebot/discord"
	"github.com/riftcord/corebot/json"
	"github.com/riftcord/corebot/transport"
)

func messagesRoute(channelID discord.Snowflake) string {
	return channelRoute(channelID) + "/messages"
}

func messageRoute(channelID, messageID discord.Snowflake) string {
	return messagesRoute(channelID) + "/" + messageID.String()
}

// ListMessagesData is the query parameters for GET .../messages, encoded via
// gorilla/schema.
type ListMessagesData struct {
	Before discord.Snowflake `schema:"before,omitempty"`
	After  discord.Snowflake `schema:"after,omitempty"`
	Around discord.Snowflake `schema:"around,omitempty"`
	Limit  uint              `schema:"limit,omitempty"`
}

// ListMessages fetches up to 100 messages from a channel per the query
// parameters in data.
func (c *Client) ListMessages(ctx context.Context, channelID discord.Snowflake, data ListMessagesData) ([]discord.Message, error) {
	if data.Limit == 0 {
		data.Limit = 50
	}
	var msgs []discord.Message
	err := c.do(ctx, request{
		method: "GET",
		path:   messagesRoute(channelID),
		query:  data,
	}, &msgs)
	return msgs, err
}

// Message fetches a single message.
func (c *Client) Message(ctx context.Context, channelID, messageID discord.Snowflake) (*discord.Message, error) {
	var msg discord.Message
	err := c.do(ctx, request{
		method: "GET",
		path:   messageRoute(channelID, messageID),
	}, &msg)
	return &msg, err
}

// File is a single attachment to upload alongside a message.
type File struct {
	Name   string
	Reader io.Reader
}

// SendMessageData is the JSON body for POST .../messages.
type SendMessageData struct {
	Content string `json:"content,omitempty"`
	// Files are uploaded as attachments. SendMessage switches to a
	// multipart/form-data body with the JSON payload under the
	// "payload_json" field automatically when any are present.
	Files []File `json:"-"`
}

// SendMessage posts a message to a channel.
func (c *Client) SendMessage(ctx context.Context, channelID discord.Snowflake, data SendMessageData) (*discord.Message, error) {
	var msg discord.Message

	if len(data.Files) == 0 {
		err := c.do(ctx, request{
			method: "POST",
			path:   messagesRoute(channelID),
			body:   data,
		}, &msg)
		return &msg, err
	}

	body, contentType, err := transport.Multipart(func(w *multipart.Writer) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return err
		}
		if err := w.WriteField("payload_json", string(payload)); err != nil {
			return err
		}
		for i, f := range data.Files {
			part, err := w.CreateFormFile(fmt.Sprintf("files[%d]", i), f.Name)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, f.Reader); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "api: failed to build multipart message body")
	}

	err = c.do(ctx, request{
		method:      "POST",
		path:        messagesRoute(channelID),
		rawBody:     body.Bytes(),
		contentType: contentType,
	}, &msg)
	return &msg, err
}

// DeleteMessage deletes a single message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID discord.Snowflake, reason string) error {
	return c.do(ctx, request{
		method:      "DELETE",
		path:        messageRoute(channelID, messageID),
		auditReason: reason,
	}, nil)
}

// bulkDeleteAge is the platform's hard floor: a message older than this
// cannot be bulk-deleted, and the whole request is rejected rather than
// silently dropping the offending ID.
const bulkDeleteAge = 14 * 24 * time.Hour

// ErrMessageTooOld is returned by DeleteMessages, before any request is
// sent, when one of the given IDs is older than the platform's 14-day
// bulk-delete limit. The client aborts client-side instead of forwarding a
// request the platform is guaranteed to reject, since the failure is
// knowable from the IDs alone and doing so avoids burning a bucket slot on
// a request that cannot succeed.
var ErrMessageTooOld = errors.New("api: one or more message IDs are older than 14 days and cannot be bulk-deleted")

type bulkDeleteData struct {
	Messages []discord.Snowflake `json:"messages"`
}

// DeleteMessages bulk-deletes between 2 and 100 messages in one request. It
// validates every ID's age against the platform's 14-day ceiling before
// submitting anything; if any ID fails, the entire call aborts with
// ErrMessageTooOld and no request reaches the governor.
func (c *Client) DeleteMessages(ctx context.Context, channelID discord.Snowflake, messageIDs []discord.Snowflake, reason string) error {
	now := time.Now()
	for _, id := range messageIDs {
		if id.OlderThan(now, bulkDeleteAge) {
			return ErrMessageTooOld
		}
	}

	return c.do(ctx, request{
		method:      "POST",
		path:        messagesRoute(channelID) + "/bulk-delete",
		body:        bulkDeleteData{Messages: messageIDs},
		auditReason: reason,
	}, nil)
}
