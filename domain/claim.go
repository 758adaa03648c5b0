package domain

// Claim is an immutable (type, value) pair. Two claims with the same type and
// value are interchangeable; use == to compare.
type Claim struct {
	Type  string
	Value string
}

// NewClaim validates and builds a claim.
func NewClaim(claimType, value string) (Claim, error) {
	c := Claim{Type: claimType, Value: value}
	if err := c.validate(); err != nil {
		return Claim{}, err
	}
	return c, nil
}

func (c Claim) validate() error {
	if c.Type == "" {
		return MissingArgument("claim type")
	}
	return nil
}

func (c Claim) String() string { return c.Type + "=" + c.Value }

func indexOfClaim(claims []Claim, c Claim) int {
	for i, existing := range claims {
		if existing == c {
			return i
		}
	}
	return -1
}
