package machine

import "strings"

// DataType classifies how a setting value should be edited and validated.
type DataType int

const (
	DataTypeUnknown DataType = iota
	DataTypeBoolean
	DataTypeBitfield
	DataTypeRadioButton
	DataTypeInteger
	DataTypeFloat
	DataTypeString
	DataTypeIPAddress
)

// dataTypeSynonyms maps the type names firmware builds actually emit.
var dataTypeSynonyms = map[string]DataType{
	"bool":        DataTypeBoolean,
	"boolean":     DataTypeBoolean,
	"bitfield":    DataTypeBitfield,
	"mask":        DataTypeBitfield,
	"radiobutton": DataTypeRadioButton,
	"radio":       DataTypeRadioButton,
	"int":         DataTypeInteger,
	"integer":     DataTypeInteger,
	"float":       DataTypeFloat,
	"decimal":     DataTypeFloat,
	"string":      DataTypeString,
	"text":        DataTypeString,
	"ip":          DataTypeIPAddress,
	"ipaddress":   DataTypeIPAddress,
}

// ParseDataType matches a reported data type name case-insensitively;
// anything unrecognized is DataTypeUnknown.
func ParseDataType(text string) DataType {
	if dt, ok := dataTypeSynonyms[strings.ToLower(strings.TrimSpace(text))]; ok {
		return dt
	}
	return DataTypeUnknown
}

func (d DataType) String() string {
	switch d {
	case DataTypeBoolean:
		return "boolean"
	case DataTypeBitfield:
		return "bitfield"
	case DataTypeRadioButton:
		return "radiobutton"
	case DataTypeInteger:
		return "integer"
	case DataTypeFloat:
		return "float"
	case DataTypeString:
		return "string"
	case DataTypeIPAddress:
		return "ipaddress"
	}
	return "unknown"
}

// SettingRecord describes one controller setting as reported by the
// extended settings enumeration. Every field past the id is optional; a
// sub-field that fails to parse is left absent, never rejects the record.
type SettingRecord struct {
	ID            int
	GroupID       *int
	Name          *string
	Unit          *string
	DataType      DataType
	Format        *string
	Min           *float64
	Max           *float64
	AllowNegative bool
}

// SettingGroupRecord is one node of the settings group tree.
type SettingGroupRecord struct {
	ID       int
	ParentID int
	Name     string
}
