package domain

// Service is an add-on offered alongside accommodations (sauna, boat rental,
// airport transfer). Free services carry no price rows.
type Service struct {
	ID                int64
	Name              string
	ShortDescription  *string
	FullDescription   *string
	Image             *string
	IsFree            bool
	AgreementRequired bool
	Prices            []ServicePrice
}

type ServicePrice struct {
	ID            int64
	ServiceID     int64
	Name          *string
	Category      DayCategory
	DurationHours *float64
	Price         Money
}
