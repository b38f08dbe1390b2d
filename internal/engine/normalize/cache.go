package normalize

import "github.com/a-deal/gym-finder/internal/model"

// Cache memoizes normalized fields for the lifetime of one region pass.
// It is not safe for concurrent use; each region task owns its own Cache.
// A nil *Cache normalizes without memoizing.
type Cache struct {
	names     map[string]string
	addresses map[string]string
	phones    map[string]string
	domains   map[string]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		names:     make(map[string]string),
		addresses: make(map[string]string),
		phones:    make(map[string]string),
		domains:   make(map[string]string),
	}
}

// Listing returns the normalized form of l.
func (c *Cache) Listing(l *model.Listing) model.NormalizedListing {
	if c == nil {
		c = &Cache{}
	}
	n := model.NormalizedListing{
		Name:    memo(c.names, l.Name, Name),
		Address: memo(c.addresses, l.Address, Address),
		Phone:   memo(c.phones, l.Phone, Phone),
		Domain:  memo(c.domains, l.Website, Domain),
	}
	n.NameTokens = Tokens(n.Name)
	return n
}

// Name is the memoized form of the package-level Name.
func (c *Cache) Name(s string) string {
	if c == nil {
		return Name(s)
	}
	return memo(c.names, s, Name)
}

// Address is the memoized form of the package-level Address.
func (c *Cache) Address(s string) string {
	if c == nil {
		return Address(s)
	}
	return memo(c.addresses, s, Address)
}

// Len returns the number of memoized entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names) + len(c.addresses) + len(c.phones) + len(c.domains)
}

func memo(m map[string]string, in string, fn func(string) string) string {
	if in == "" {
		return ""
	}
	if m == nil {
		return fn(in)
	}
	if out, ok := m[in]; ok {
		return out
	}
	out := fn(in)
	m[in] = out
	return out
}
