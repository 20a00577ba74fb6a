package entities

// Principal is an opaque, externally authenticated actor identity.
type Principal string

// Height is the external monotonic block counter value.
type Height uint64

// Amount is a fungible stake value in micro-units.
type Amount uint64

// PostID and ReportID are sequential identifiers allocated by the registry.
type PostID uint64

type ReportID uint64

// ContentRefSize is the fixed length of the opaque content identifier.
const ContentRefSize = 64

type PostStatus string

const (
	PostStatusActive  PostStatus = "active"
	PostStatusFlagged PostStatus = "flagged"
	PostStatusRemoved PostStatus = "removed"
)

// Post is owned by the post registry and mutated only by the report engine.
// Posts are never deleted; moderation outcomes move Status instead.
type Post struct {
	PostID      PostID
	Author      Principal
	ContentRef  []byte
	CreatedAt   Height
	Status      PostStatus
	ReportCount uint64
}
