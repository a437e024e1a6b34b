package session

import "github.com/amirhf/imageSearch/services/search-web/models"

// ConfirmKey is the key that triggers a search from the text box.
const ConfirmKey = "Enter"

// InputCollector holds the query being edited. It is not safe for
// concurrent use on its own; Session serialises access.
type InputCollector struct {
	previews *PreviewStore
	text     string
	image    *models.Image
	preview  string
}

func NewInputCollector(previews *PreviewStore) *InputCollector {
	return &InputCollector{previews: previews}
}

func (c *InputCollector) SetText(value string) {
	c.text = value
}

// SelectImage replaces the selected image. A nil image means the picker was
// cancelled and leaves the input unchanged.
func (c *InputCollector) SelectImage(img *models.Image) {
	if img == nil {
		return
	}
	c.releasePreview()
	c.image = img
	c.preview = c.previews.Acquire(img)
}

// RemoveImage clears the image and its preview. The text is kept.
func (c *InputCollector) RemoveImage() {
	c.releasePreview()
	c.image = nil
}

// Reset empties the text and removes the image.
func (c *InputCollector) Reset() {
	c.text = ""
	c.RemoveImage()
}

func (c *InputCollector) releasePreview() {
	if c.preview == "" {
		return
	}
	c.previews.Release(c.preview)
	c.preview = ""
}

func (c *InputCollector) Text() string         { return c.text }
func (c *InputCollector) Image() *models.Image { return c.image }
func (c *InputCollector) Preview() string      { return c.preview }

// Query snapshots the current input.
func (c *InputCollector) Query() models.Query {
	return models.Query{Text: c.text, Image: c.image}
}
