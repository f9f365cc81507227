package storage

// Category is a family of images sharing a key prefix and a per-owner cap.
type Category struct {
	Name      string
	Prefix    string
	MaxImages int
}

var (
	// Avatar is the single profile image of a user.
	Avatar = Category{Name: "avatar", Prefix: "avatar/", MaxImages: 1}

	// Carousel holds the shared gallery photos. The cap is gallery wide.
	Carousel = Category{Name: "carousel", Prefix: "carousel/", MaxImages: 10}

	// TodoAttachment holds images attached to a single todo.
	TodoAttachment = Category{Name: "todo", Prefix: "two-do/", MaxImages: 5}
)

// ObjectKey returns the full object key for an image key in this category.
func (c Category) ObjectKey(key string) string {
	return c.Prefix + key
}
