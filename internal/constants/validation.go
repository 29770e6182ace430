package constants

// Field Length Limits
const (
	MinPasswordLength = 6
	MaxPasswordLength = 100
	MinNameLength     = 2
	MaxNameLength     = 50
	MinPhoneLength    = 10
	MaxPhoneLength    = 15
	MaxEmailLength    = 255
	MaxTitleLength    = 120
	MaxDescLength     = 2000
	MaxURLLength      = 2048
)

// Validation Patterns
const (
	PhonePattern   = `^\+?[1-9]\d{1,14}$` // E.164 format
	PincodePattern = `^[1-9][0-9]{5}$`
)
