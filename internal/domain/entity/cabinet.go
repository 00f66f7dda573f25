package entity

// Cabinet armario físico con semáforo propio en el PLC (TrafficLight_<id>).
type Cabinet struct {
	ID   int64
	Name string
}

// Shelf pertenece a exactamente un Cabinet.
type Shelf struct {
	ID                       int64
	CabinetID                int64
	Name                     string
	AllowsMultipleCategories bool
}

// ShelfCategory vincula un estante con una categoría permitida.
type ShelfCategory struct {
	ShelfID    int64
	CategoryID int64
}
