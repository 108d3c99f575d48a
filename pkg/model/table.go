package model

// Table is one bookable unit of the floor catalog. Either free or reserved
// for an interval, there is no partial capacity.
type Table struct {
	ID    string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name  string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Seats int    `json:"seats" bson:"seats" validate:"required,min=1,max=50"`
}

type TableUpdate struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Seats *int   `json:"seats,omitempty" validate:"omitempty,min=1,max=50"`
}
