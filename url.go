package ytcomments

import (
	"net/url"
	"regexp"
	"strings"
)

// videoIDPattern matches the opaque 11-character video id used by every
// recognized URL shape.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// VideoRef is a validated video reference. CanonicalURL is always the
// watch-page shape regardless of the input shape.
type VideoRef struct {
	VideoID      string
	OriginalURL  string
	CanonicalURL string
}

// InvalidURL pairs a rejected input with the reason it was rejected.
type InvalidURL struct {
	URL string
	Err error
}

// CanonicalWatchURL returns the canonical watch-page URL for a video id.
func CanonicalWatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// IsVideoID reports whether s looks like a bare 11-character video id.
func IsVideoID(s string) bool {
	return videoIDPattern.MatchString(s)
}

// ParseVideoURL validates a video URL and extracts its id. Four shapes are
// recognized, all carrying the same id pattern:
//
//	https://www.youtube.com/watch?v=<id>
//	https://youtu.be/<id>
//	https://www.youtube.com/shorts/<id>
//	https://www.youtube.com/embed/<id>
//
// A URL on an unrecognized host and a recognized host without a parseable
// id produce distinct EINVALID errors.
func ParseVideoURL(rawURL string) (*VideoRef, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, Errorf(EINVALID, "video URL required")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, Errorf(EINVALID, "malformed URL %q", rawURL)
	}

	host := strings.ToLower(u.Hostname())
	switch host {
	case "youtu.be", "www.youtu.be":
		id := strings.Trim(u.Path, "/")
		if !IsVideoID(id) {
			return nil, Errorf(EINVALID, "no video id found in URL %q", rawURL)
		}
		return newVideoRef(id, trimmed), nil

	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com":
		if id, ok := videoIDFromPath(u); ok {
			return newVideoRef(id, trimmed), nil
		}
		return nil, Errorf(EINVALID, "no video id found in URL %q", rawURL)

	default:
		return nil, Errorf(EINVALID, "unsupported host %q in URL %q", host, rawURL)
	}
}

// videoIDFromPath extracts the id from the youtube.com URL shapes.
func videoIDFromPath(u *url.URL) (string, bool) {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch segments[0] {
	case "watch":
		id := u.Query().Get("v")
		return id, IsVideoID(id)
	case "shorts", "embed":
		if len(segments) < 2 {
			return "", false
		}
		return segments[1], IsVideoID(segments[1])
	}
	return "", false
}

func newVideoRef(id, original string) *VideoRef {
	return &VideoRef{
		VideoID:      id,
		OriginalURL:  original,
		CanonicalURL: CanonicalWatchURL(id),
	}
}

// NormalizeURLs partitions a list of raw URLs into valid references and
// rejected inputs, preserving input order in both partitions. It never
// returns an error; per-input failures end up in the invalid partition.
func NormalizeURLs(rawURLs []string) (valid []*VideoRef, invalid []InvalidURL) {
	for _, raw := range rawURLs {
		ref, err := ParseVideoURL(raw)
		if err != nil {
			invalid = append(invalid, InvalidURL{URL: raw, Err: err})
			continue
		}
		valid = append(valid, ref)
	}
	return valid, invalid
}
