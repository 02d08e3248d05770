package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/security"
)

// envelope is the Laravel response wrapper.
type envelope struct {
	Status  *model.Flag     `json:"status"`
	Success *model.Flag     `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Decoder turns a raw response body into a typed value, decrypting encrypted
// payloads on the way.
type Decoder struct {
	cipher *security.EnvelopeCipher
}

func NewDecoder(cipher *security.EnvelopeCipher) *Decoder {
	return &Decoder{cipher: cipher}
}

// Decode unwraps the response envelope and decodes its data into out.
func (d *Decoder) Decode(body []byte, out interface{}) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}

	if body[0] != '{' {
		return d.DecodePayload(body, out)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return apperrors.NewUpstream("malformed response", err)
	}
	if (env.Status != nil && !bool(*env.Status)) || (env.Success != nil && !bool(*env.Success)) {
		msg := env.Message
		if msg == "" {
			msg = "request was rejected"
		}
		return apperrors.NewUpstream(msg, nil)
	}

	if env.Status == nil && env.Success == nil && env.Data == nil {
		return d.DecodePayload(body, out)
	}
	return d.DecodePayload(env.Data, out)
}

// DecodePayload decodes a bare payload: an encrypted string or plain JSON.
func (d *Decoder) DecodePayload(raw json.RawMessage, out interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || out == nil {
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return apperrors.NewUpstream("malformed response", err)
		}
		if security.IsEnvelope(s) {
			if d.cipher == nil {
				return apperrors.NewDecryption(fmt.Errorf("encrypted response but no key configured"))
			}
			if err := d.cipher.OpenJSON(s, out); err != nil {
				return apperrors.NewDecryption(err)
			}
			return nil
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewUpstream("unexpected response shape", err)
	}
	return nil
}

// paginated mirrors Laravel's length-aware paginator.
type paginated[T any] struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	Data        []T `json:"data"`
}

func (p paginated[T]) page() model.Page[T] {
	items := p.Data
	if items == nil {
		items = []T{}
	}
	last := p.LastPage
	if last == 0 && p.CurrentPage > 0 {
		last = p.CurrentPage
	}
	return model.Page[T]{
		Items: items,
		Meta: model.PageMeta{
			CurrentPage: p.CurrentPage,
			LastPage:    last,
			PerPage:     p.PerPage,
			Total:       p.Total,
		},
	}
}
