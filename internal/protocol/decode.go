package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var ErrMalformedMessage = errors.New("malformed_message")

var validate = validator.New()

// Decode parses and validates one inbound frame. Every failure wraps
// ErrMalformedMessage.
func Decode(raw []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := validate.Struct(msg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
				return fe.Field() + ":" + fe.Tag()
			})
			return ClientMessage{}, fmt.Errorf("%w: %s", ErrMalformedMessage, strings.Join(fields, ","))
		}
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	switch msg.Type {
	case TypeCreate, TypeJoin:
		if strings.TrimSpace(msg.RoomID) == "" {
			return ClientMessage{}, fmt.Errorf("%w: roomId required", ErrMalformedMessage)
		}
	case TypeMove:
		if msg.Position == nil {
			return ClientMessage{}, fmt.Errorf("%w: position required", ErrMalformedMessage)
		}
	}
	return msg, nil
}
