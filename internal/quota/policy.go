// Package quota decides how much a guest may upload to an event.
//
// Everything here is a pure function over counts; the caller is responsible for
// reading the counts and persisting the outcome atomically.
package quota

import (
	"fmt"

	"github.com/neberku/neberku-backend/internal/domain"
)

// Policy selects how a guest's media allowance is evaluated
type Policy int

const (
	// PolicyAggregate all media kinds share one per-guest ceiling
	PolicyAggregate Policy = iota
	// PolicyPerMediaType the shared ceiling plus one ceiling per media kind
	PolicyPerMediaType
)

func (p Policy) String() string {
	if p == PolicyPerMediaType {
		return "per_media_type"
	}
	return "aggregate"
}

// Defaults applied when an event has no settings row
const (
	DefaultMaxMediaPerGuest = 1
	DefaultMaxImagePerPost  = 3
	DefaultMaxVideoPerPost  = 2
	DefaultMaxVoicePerPost  = 1
)

// Counts media items per kind
type Counts struct {
	Photo int `json:"photo"`
	Video int `json:"video"`
	Voice int `json:"voice"`
}

// Of returns the count for one kind
func (c Counts) Of(t domain.MediaType) int {
	switch t {
	case domain.MediaPhoto:
		return c.Photo
	case domain.MediaVideo:
		return c.Video
	case domain.MediaVoice:
		return c.Voice
	}
	return 0
}

// Add increments the count for one kind
func (c *Counts) Add(t domain.MediaType, n int) {
	switch t {
	case domain.MediaPhoto:
		c.Photo += n
	case domain.MediaVideo:
		c.Video += n
	case domain.MediaVoice:
		c.Voice += n
	}
}

// Total across all kinds
func (c Counts) Total() int {
	return c.Photo + c.Video + c.Voice
}

// Limits per-guest ceilings in force for an event.
// MaxMediaPerGuest is stored as max_posts_per_guest but bounds media items, not posts.
type Limits struct {
	Policy           Policy
	MaxMediaPerGuest int
	PerKind          Counts
}

// LimitsFromSettings converts the stored settings row; nil yields the defaults
func LimitsFromSettings(s *domain.EventSettings) Limits {
	if s == nil {
		return Limits{
			Policy:           PolicyAggregate,
			MaxMediaPerGuest: DefaultMaxMediaPerGuest,
			PerKind: Counts{
				Photo: DefaultMaxImagePerPost,
				Video: DefaultMaxVideoPerPost,
				Voice: DefaultMaxVoicePerPost,
			},
		}
	}

	policy := PolicyAggregate
	if s.MakeValidationPerMedia {
		policy = PolicyPerMediaType
	}
	return Limits{
		Policy:           policy,
		MaxMediaPerGuest: s.MaxPostsPerGuest,
		PerKind: Counts{
			Photo: s.MaxImagePerPost,
			Video: s.MaxVideoPerPost,
			Voice: s.MaxVoicePerPost,
		},
	}
}

// Violation a batch that would push a guest past one of the ceilings.
// MediaType is empty for the shared ceiling.
type Violation struct {
	Policy    Policy
	MediaType domain.MediaType
	Limit     int
	Existing  int
	Incoming  int
}

func (v *Violation) Error() string {
	if v.MediaType == "" && v.Policy == PolicyPerMediaType {
		// per-media-type events word the shared ceiling in posts
		return fmt.Sprintf("Maximum posts per guest (%d) exceeded. "+
			"You have already created %d post(s) for this event remaining media files %d.",
			v.Limit, v.Existing, v.Remaining())
	}
	if v.MediaType == "" {
		return fmt.Sprintf("Maximum media files per guest (%d) exceeded. "+
			"You have already uploaded %d media file(s), and you're trying to upload %d more. "+
			"Total would be %d, but maximum allowed is %d.",
			v.Limit, v.Existing, v.Incoming, v.Existing+v.Incoming, v.Limit)
	}

	plural, unit := kindNouns(v.MediaType)
	return fmt.Sprintf("Maximum %s per post (%d) exceeded. "+
		"You have already uploaded %d %s, and you're trying to upload %d more. "+
		"Total would be %d, but maximum allowed is %d.",
		plural, v.Limit, v.Existing, unit, v.Incoming, v.Existing+v.Incoming, v.Limit)
}

// Remaining how many more items the ceiling would have allowed
func (v *Violation) Remaining() int {
	return max(0, v.Limit-v.Existing)
}

// Excess how many items of the batch are over the ceiling
func (v *Violation) Excess() int {
	return v.Existing + v.Incoming - v.Limit
}

func kindNouns(t domain.MediaType) (plural, unit string) {
	switch t {
	case domain.MediaPhoto:
		return "images", "image(s)"
	case domain.MediaVideo:
		return "videos", "video(s)"
	default:
		return "voice recordings", "voice recording(s)"
	}
}

// Check evaluates an incoming batch against the guest's stored media.
// existing must exclude the post being submitted. An empty batch always passes.
func (l Limits) Check(existing, incoming Counts) error {
	if incoming.Total() == 0 {
		return nil
	}

	if existing.Total()+incoming.Total() > l.MaxMediaPerGuest {
		return &Violation{
			Policy:   l.Policy,
			Limit:    l.MaxMediaPerGuest,
			Existing: existing.Total(),
			Incoming: incoming.Total(),
		}
	}

	if l.Policy != PolicyPerMediaType {
		return nil
	}

	for _, t := range domain.MediaTypes {
		limit := l.PerKind.Of(t)
		if existing.Of(t)+incoming.Of(t) > limit {
			return &Violation{
				Policy:    l.Policy,
				MediaType: t,
				Limit:     limit,
				Existing:  existing.Of(t),
				Incoming:  incoming.Of(t),
			}
		}
	}
	return nil
}

// KindAllowance remaining uploads for one media kind
type KindAllowance struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// Allowance what a guest may still upload to an event
type Allowance struct {
	Policy    string                             `json:"policy"`
	Limit     int                                `json:"limit"`
	Used      int                                `json:"used"`
	Remaining int                                `json:"remaining"`
	PerKind   map[domain.MediaType]KindAllowance `json:"per_kind,omitempty"`
}

// Allowance reports the guest's remaining quota given their stored media
func (l Limits) Allowance(existing Counts) Allowance {
	a := Allowance{
		Policy:    l.Policy.String(),
		Limit:     l.MaxMediaPerGuest,
		Used:      existing.Total(),
		Remaining: max(0, l.MaxMediaPerGuest-existing.Total()),
	}
	if l.Policy != PolicyPerMediaType {
		return a
	}

	a.PerKind = make(map[domain.MediaType]KindAllowance, len(domain.MediaTypes))
	for _, t := range domain.MediaTypes {
		limit := l.PerKind.Of(t)
		a.PerKind[t] = KindAllowance{
			Limit:     limit,
			Used:      existing.Of(t),
			Remaining: min(a.Remaining, max(0, limit-existing.Of(t))),
		}
	}
	return a
}
