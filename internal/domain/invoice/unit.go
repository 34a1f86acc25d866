package invoice

// Unit is the unit of measure of an invoice line
type Unit string

const (
	UnitPiece       Unit = "piece"
	UnitSquareMeter Unit = "sq meter"
	UnitMeter       Unit = "meter"
	UnitKilogram    Unit = "kg"
	UnitTon         Unit = "ton"
	UnitBox         Unit = "box"
	UnitSet         Unit = "set"
)

var unitLabels = map[Unit]string{
	UnitPiece:       "Piece",
	UnitSquareMeter: "Square Meter",
	UnitMeter:       "Meter",
	UnitKilogram:    "Kilogram",
	UnitTon:         "Ton",
	UnitBox:         "Box",
	UnitSet:         "Set",
}

// IsValid checks if the unit is one of the supported units
func (u Unit) IsValid() bool {
	_, ok := unitLabels[u]
	return ok
}

// Label returns the human readable unit name
func (u Unit) Label() string {
	if l, ok := unitLabels[u]; ok {
		return l
	}
	return string(u)
}
