package entity

// Category agrupa productos; el nombre es único.
type Category struct {
	ID          int64
	Name        string
	Description string
}
