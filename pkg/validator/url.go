package validator

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrNotYouTube     = errors.New("not a YouTube URL")
	ErrInvalidVideoID = errors.New("invalid video id")
)

var videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// hosts that carry the id in the "v" query parameter
var queryHosts = []string{
	"youtube.com",
	"www.youtube.com",
	"m.youtube.com",
	"music.youtube.com",
	"gaming.youtube.com",
}

// hosts that carry the id in the path
var pathHosts = []string{
	"youtu.be",
	"youtube.com",
	"www.youtube.com",
	"m.youtube.com",
	"music.youtube.com",
	"gaming.youtube.com",
	"www.youtube-nocookie.com",
}

var pathPrefixes = []string{"/embed/", "/v/", "/shorts/", "/live/"}

func IsYouTubeURL(raw string) bool {
	_, err := VideoID(raw)
	return err == nil
}

// VideoID extracts the 11 character video id from a watch, short, embed or
// youtu.be URL.
func VideoID(raw string) (string, error) {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrNotYouTube
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrNotYouTube
	}

	host := strings.ToLower(u.Hostname())
	var id string

	if contains(queryHosts, host) {
		id = u.Query().Get("v")
	}
	if id == "" && contains(pathHosts, host) {
		path := u.Path
		if host == "youtu.be" {
			id = strings.Trim(path, "/")
		} else {
			for _, p := range pathPrefixes {
				if strings.HasPrefix(path, p) {
					id = strings.SplitN(strings.TrimPrefix(path, p), "/", 2)[0]
					break
				}
			}
		}
	}

	if id == "" {
		if !contains(queryHosts, host) && !contains(pathHosts, host) {
			return "", ErrNotYouTube
		}
		return "", ErrInvalidVideoID
	}
	if !videoIDPattern.MatchString(id) {
		return "", ErrInvalidVideoID
	}
	return id, nil
}

func contains(list []string, s string) bool {
	for _, h := range list {
		if h == s {
			return true
		}
	}
	return false
}
