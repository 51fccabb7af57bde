package memory

import "fanvault/services/platform/internal/entity"

// Stored values must not share pointers or slices with the caller's copy.

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneUser(u entity.User) entity.User {
	u.WalletAddress = cloneString(u.WalletAddress)
	return u
}

func cloneCreator(c entity.Creator) entity.Creator {
	if c.Tiers != nil {
		tiers := make([]entity.Tier, len(c.Tiers))
		for i, t := range c.Tiers {
			if t.Perks != nil {
				t.Perks = append([]string(nil), t.Perks...)
			}
			tiers[i] = t
		}
		c.Tiers = tiers
	}
	return c
}

func clonePost(p entity.Post) entity.Post {
	p.Content = cloneString(p.Content)
	p.MediaURL = cloneString(p.MediaURL)
	return p
}

func cloneTip(t entity.Tip) entity.Tip {
	t.CreatorID = cloneString(t.CreatorID)
	t.PostID = cloneString(t.PostID)
	return t
}
