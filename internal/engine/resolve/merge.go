package resolve

import (
	"slices"

	"github.com/a-deal/gym-finder/internal/model"
)

const fieldCount = 10

// Completeness is the fraction of descriptive fields a listing populates.
func Completeness(l *model.Listing) float64 {
	return float64(filledFields(l)) / fieldCount
}

func filledFields(l *model.Listing) int {
	n := 0
	for _, filled := range []bool{
		l.Name != "",
		l.Address != "",
		l.Phone != "",
		l.Coordinates != nil,
		l.Website != "",
		l.Rating != nil,
		l.ReviewCount != nil,
		l.PriceLevel != nil,
		!l.Hours.IsEmpty(),
		len(l.Categories) > 0,
	} {
		if filled {
			n++
		}
	}
	return n
}

// Merge fuses two records judged to be the same business. The audit
// confidence is the lowest of this merge and any earlier merge behind a or b.
func (r *Resolver) Merge(a, b model.MergedListing, confidence float64) model.MergedListing {
	m := r.Fuse(a, b)
	c := confidence
	if m.MatchConfidence != nil && *m.MatchConfidence < c {
		c = *m.MatchConfidence
	}
	m.MatchConfidence = &c
	return m
}

// Fuse combines the fields of two records without recording a new match.
// Each field takes the non-empty value; when both are set the record with
// more populated fields wins, then the better source priority, then the
// lexically smaller first source. Provenance is the union of both sides.
func (r *Resolver) Fuse(a, b model.MergedListing) model.MergedListing {
	win, lose := a, b
	if r.prefer(b, a) {
		win, lose = b, a
	}

	out := model.MergedListing{
		Listing: model.Listing{
			Name:        pick(win.Name, lose.Name),
			Address:     pick(win.Address, lose.Address),
			Phone:       pick(win.Phone, lose.Phone),
			Coordinates: pickPtr(win.Coordinates, lose.Coordinates),
			Website:     pick(win.Website, lose.Website),
			Rating:      pickPtr(win.Rating, lose.Rating),
			ReviewCount: pickPtr(win.ReviewCount, lose.ReviewCount),
			PriceLevel:  pickPtr(win.PriceLevel, lose.PriceLevel),
			Hours:       win.Hours,
			Categories:  union(win.Categories, lose.Categories),
		},
		Sources:     union(a.Sources, b.Sources),
		Members:     append(slices.Clone(a.Members), b.Members...),
		Region:      a.Region,
		AlsoFoundIn: union(a.AlsoFoundIn, b.AlsoFoundIn),
	}
	if win.Hours.IsEmpty() {
		out.Hours = lose.Hours
	}
	if len(a.Links)+len(b.Links) > 0 {
		out.Links = make(map[model.SourceID]string, len(a.Links)+len(b.Links))
		for k, v := range lose.Links {
			out.Links[k] = v
		}
		for k, v := range win.Links {
			out.Links[k] = v
		}
	}
	out.MatchConfidence = minConfidence(a.MatchConfidence, b.MatchConfidence)
	return out
}

// prefer reports whether x should supply fields over y.
func (r *Resolver) prefer(x, y model.MergedListing) bool {
	if cx, cy := filledFields(&x.Listing), filledFields(&y.Listing); cx != cy {
		return cx > cy
	}
	if rx, ry := r.rank(x.Sources), r.rank(y.Sources); rx != ry {
		return rx < ry
	}
	return firstSource(x) < firstSource(y)
}

func firstSource(m model.MergedListing) model.SourceID {
	if len(m.Sources) == 0 {
		return ""
	}
	return m.Sources[0]
}

func pick(win, lose string) string {
	if win != "" {
		return win
	}
	return lose
}

func pickPtr[T any](win, lose *T) *T {
	if win != nil {
		return win
	}
	return lose
}

// union keeps first-seen order and drops duplicates.
func union[T comparable](a, b []T) []T {
	if len(a)+len(b) == 0 {
		return nil
	}
	seen := make(map[T]bool, len(a)+len(b))
	out := make([]T, 0, len(a)+len(b))
	for _, list := range [][]T{a, b} {
		for _, v := range list {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func minConfidence(a, b *float64) *float64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil || *a <= *b:
		v := *a
		return &v
	}
	v := *b
	return &v
}
