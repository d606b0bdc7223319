package model

// PostStatus represents the publication state of a graduate record.
type PostStatus string

const (
	PostStatusPublish PostStatus = "publish"
	PostStatusDraft   PostStatus = "draft"
	PostStatusPrivate PostStatus = "private"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusPublish, PostStatusDraft, PostStatusPrivate:
		return true
	}
	return false
}

// OrderBy names the attribute a listing is sorted by.
type OrderBy string

const (
	OrderByTitle OrderBy = "title"
	OrderByDate  OrderBy = "date"
	OrderByID    OrderBy = "id"
)

// Valid reports whether o is a supported sort attribute.
func (o OrderBy) Valid() bool {
	switch o {
	case OrderByTitle, OrderByDate, OrderByID:
		return true
	}
	return false
}

// SortOrder is the direction of a listing sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Valid reports whether o is asc or desc.
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}
