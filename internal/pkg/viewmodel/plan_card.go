package viewmodel

// PlanCard is one subscription tier on the landing page.
type PlanCard struct {
	ID          string
	Name        string
	Description string
	Features    []string
	// PriceLabel is a formatted amount such as "$9.00", or "Custom".
	PriceLabel string
	Interval   string
}

// Dashboard is the signed-in user's account summary.
type Dashboard struct {
	Name      string
	Email     string
	AvatarURL string
	Plan      string
	IsPaid    bool
	CreatedAt string
}
