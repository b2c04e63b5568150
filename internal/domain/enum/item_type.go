package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ItemType distinguishes stocked goods from services
type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeService ItemType = "service"
)

func (t ItemType) String() string {
	return string(t)
}

// IsValid checks if the type is a known item type
func (t ItemType) IsValid() bool {
	return t == ItemTypeProduct || t == ItemTypeService
}

// TracksStock reports whether items of this type consume inventory
func (t ItemType) TracksStock() bool {
	return t == ItemTypeProduct
}

func (t ItemType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *ItemType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*t = ItemType(str)
	return nil
}

func (t ItemType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *ItemType) Scan(value interface{}) error {
	if value == nil {
		*t = ItemTypeProduct
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = ItemType(v)
	case []byte:
		*t = ItemType(string(v))
	}
	return nil
}
