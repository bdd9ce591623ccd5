package util

import (
	"encoding/json"
	"errors"

	"github.com/jinzhu/gorm/dialects/postgres"
)

var ErrNilJsonb = errors.New("nil jsonb")

func EncodeToPostgresJsonb(value interface{}) (*postgres.Jsonb, error) {
	bytes, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return &postgres.Jsonb{RawMessage: json.RawMessage(bytes)}, nil
}

func DecodePostgresJsonb(sourceJsonb *postgres.Jsonb) (map[string]interface{}, error) {
	if sourceJsonb == nil {
		return nil, ErrNilJsonb
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(sourceJsonb.RawMessage, &decoded); err != nil {
		return nil, err
	}
	if decoded == nil {
		decoded = make(map[string]interface{})
	}
	return decoded, nil
}
