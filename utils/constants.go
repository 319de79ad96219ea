package utils

// Date and time layouts shared by requests, exports and receipts
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
	DisplayDate    = "January 2, 2006"
)

// Upload limits
const (
	MaxUploadBytes = 10 << 20
	MaxImportRows  = 5000
)
