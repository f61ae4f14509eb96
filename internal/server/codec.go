package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/receipt-analytics/internal/common"
)

// encode renders v through its JSON form into a Struct.
func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal reply: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal reply: %w", err)
	}
	return structpb.NewStruct(m)
}

// rawJSON returns the JSON document carried by s. A nil Struct is {}.
func rawJSON(s *structpb.Struct) ([]byte, error) {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return nil, common.NewAppError(common.CodeValidation, "request is not representable as JSON", common.ErrValidation)
	}
	return b, nil
}

// decode fills v from the JSON form of s.
func decode(s *structpb.Struct, v any) error {
	b, err := rawJSON(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return common.NewAppError(common.CodeValidation, "malformed request", fmt.Errorf("%w: %v", common.ErrValidation, err))
	}
	return nil
}
