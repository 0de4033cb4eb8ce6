package model

import "strconv"

// VariantType is the numeric value type code of a field.
// The values match the codes QGIS writes for QVariant types so that reports
// stay comparable with ones produced inside the desktop application.
type VariantType int

// Variant type codes.
const (
	VariantInvalid    VariantType = 0
	VariantBool       VariantType = 1
	VariantInt        VariantType = 2
	VariantUInt       VariantType = 3
	VariantLongLong   VariantType = 4
	VariantULongLong  VariantType = 5
	VariantDouble     VariantType = 6
	VariantChar       VariantType = 7
	VariantMap        VariantType = 8
	VariantList       VariantType = 9
	VariantString     VariantType = 10
	VariantStringList VariantType = 11
	VariantByteArray  VariantType = 12
	VariantDate       VariantType = 14
	VariantTime       VariantType = 15
	VariantDateTime   VariantType = 16
)

var variantNames = map[VariantType]string{
	VariantInvalid:    "Invalid",
	VariantBool:       "Bool",
	VariantInt:        "Int",
	VariantUInt:       "UInt",
	VariantLongLong:   "LongLong",
	VariantULongLong:  "ULongLong",
	VariantDouble:     "Double",
	VariantChar:       "Char",
	VariantMap:        "Map",
	VariantList:       "List",
	VariantString:     "String",
	VariantStringList: "StringList",
	VariantByteArray:  "ByteArray",
	VariantDate:       "Date",
	VariantTime:       "Time",
	VariantDateTime:   "DateTime",
}

// String returns the Qt name of the type, or the number for unknown codes.
func (v VariantType) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return strconv.Itoa(int(v))
}

// Field is one attribute of a vector layer.
type Field struct {
	Name      string
	Alias     string
	Comment   string
	TypeName  string
	Type      VariantType
	Length    int
	Precision int
}

// DisplayName returns the alias when set, otherwise the field name.
func (f Field) DisplayName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}
