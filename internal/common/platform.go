package common

type Platform string

const (
	Instagram Platform = "INSTAGRAM"
	TikTok    Platform = "TIKTOK"
	YouTube   Platform = "YOUTUBE"
	Twitter   Platform = "TWITTER"
	Facebook  Platform = "FACEBOOK"
)

func (p Platform) Valid() bool {
	switch p {
	case Instagram, TikTok, YouTube, Twitter, Facebook:
		return true
	}
	return false
}
