package entitlement

import "fanvault/services/platform/internal/entity"

const (
	previewRunes      = 100
	ellipsis          = "..."
	LockedPlaceholder = "This content is locked."
)

// Redact builds the view of post for a viewer with decision d. Public posts
// and granted decisions pass through untouched. Otherwise content becomes a
// short preview, media is removed and ppv posts carry their unlock price.
func Redact(post *entity.Post, d Decision) entity.PostView {
	if post.Visibility == entity.VisibilityPublic || d.HasAccess || d.IsCreatorOwner {
		return entity.PostView{Post: *post, IsCreatorOwner: d.IsCreatorOwner}
	}

	locked := *post
	preview := LockedPlaceholder
	if post.Content != nil {
		preview = truncate(*post.Content)
	}
	locked.Content = &preview
	locked.MediaURL = nil
	locked.MediaType = entity.MediaTypeNone

	view := entity.PostView{Post: locked, IsLocked: true}
	if post.Visibility == entity.VisibilityPPV {
		price := post.Price
		view.UnlockPrice = &price
	}
	return view
}

func truncate(content string) string {
	runes := []rune(content)
	if len(runes) > previewRunes {
		runes = runes[:previewRunes]
	}
	return string(runes) + ellipsis
}
