// Package formats implements declarative stream selection over the format
// descriptors an extractor enumerates.
//
// Quality hints understood by Choose:
//
//	highest, lowest             best/worst overall
//	highestvideo, lowestvideo   ranked by height, then bitrate
//	highestaudio, lowestaudio   ranked by audio bitrate, then bitrate
//	<itag>                      exact itag, e.g. "18"
//	<label>                     quality label or height, e.g. "720p", "360"
//
// An empty hint means "highest".
package formats

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"tubeproxy/internal/core/domain"
)

// ErrNoMatch is returned when no format satisfies a filter.
var ErrNoMatch = errors.New("no such format found")

const (
	QualityHighest      = "highest"
	QualityLowest       = "lowest"
	QualityHighestVideo = "highestvideo"
	QualityLowestVideo  = "lowestvideo"
	QualityHighestAudio = "highestaudio"
	QualityLowestAudio  = "lowestaudio"
)

// Choose picks one format from list according to filter.
func Choose(list []domain.Format, filter domain.FormatFilter) (domain.Format, error) {
	candidates := Filter(list, filter.Kind)
	if len(candidates) == 0 {
		return domain.Format{}, fmt.Errorf("%w: no %s streams", ErrNoMatch, filter.Kind)
	}

	q := strings.ToLower(strings.TrimSpace(filter.Quality))
	if q == "" {
		q = QualityHighest
	}

	switch q {
	case QualityHighest, QualityLowest:
		return pick(candidates, betterOverall, q == QualityLowest)
	case QualityHighestVideo, QualityLowestVideo:
		return pick(Filter(candidates, domain.FilterAny, hasVideo), betterVideo, q == QualityLowestVideo)
	case QualityHighestAudio, QualityLowestAudio:
		return pick(Filter(candidates, domain.FilterAny, hasAudio), betterAudio, q == QualityLowestAudio)
	}

	if itag, err := strconv.Atoi(q); err == nil {
		for _, f := range candidates {
			if f.Itag == itag {
				return f, nil
			}
		}
	}

	if matched := byLabel(candidates, q); len(matched) > 0 {
		return pick(matched, betterOverall, false)
	}

	return domain.Format{}, fmt.Errorf("%w: %s", ErrNoMatch, filter.Quality)
}

// Filter keeps the formats accepted by kind and every extra predicate.
func Filter(list []domain.Format, kind domain.FilterKind, preds ...func(domain.Format) bool) []domain.Format {
	out := make([]domain.Format, 0, len(list))
	for _, f := range list {
		if !kindAccepts(kind, f) {
			continue
		}
		keep := true
		for _, p := range preds {
			if !p(f) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, f)
		}
	}
	return out
}

func kindAccepts(kind domain.FilterKind, f domain.Format) bool {
	switch kind {
	case domain.FilterVideoAndAudio:
		return f.HasVideo && f.HasAudio
	case domain.FilterAudioOnly:
		return f.HasAudio && !f.HasVideo
	case domain.FilterVideoOnly:
		return f.HasVideo && !f.HasAudio
	}
	return true
}

func hasVideo(f domain.Format) bool { return f.HasVideo }
func hasAudio(f domain.Format) bool { return f.HasAudio }

func byLabel(list []domain.Format, q string) []domain.Format {
	height, _ := strconv.Atoi(strings.TrimSuffix(q, "p"))
	var out []domain.Format
	for _, f := range list {
		label := strings.ToLower(f.QualityLabel)
		if label != "" && (label == q || baseLabel(label) == q) {
			out = append(out, f)
			continue
		}
		if height > 0 && f.Height == height {
			out = append(out, f)
		}
	}
	return out
}

// baseLabel drops the frame rate and any suffix after the height,
// "720p60 hdr" becomes "720p".
func baseLabel(label string) string {
	if i := strings.IndexByte(label, 'p'); i > 0 {
		return label[:i+1]
	}
	return label
}

func pick(list []domain.Format, better func(a, b domain.Format) bool, lowest bool) (domain.Format, error) {
	if len(list) == 0 {
		return domain.Format{}, ErrNoMatch
	}
	sorted := make([]domain.Format, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return better(sorted[i], sorted[j])
	})
	if lowest {
		return sorted[len(sorted)-1], nil
	}
	return sorted[0], nil
}

func betterVideo(a, b domain.Format) bool {
	if a.Height != b.Height {
		return a.Height > b.Height
	}
	return a.Bitrate > b.Bitrate
}

func betterAudio(a, b domain.Format) bool {
	if a.AudioBitrate != b.AudioBitrate {
		return a.AudioBitrate > b.AudioBitrate
	}
	return a.Bitrate > b.Bitrate
}

func betterOverall(a, b domain.Format) bool {
	if a.HasVideo != b.HasVideo {
		return a.HasVideo
	}
	if a.Height != b.Height || a.Bitrate != b.Bitrate {
		return betterVideo(a, b)
	}
	return betterAudio(a, b)
}
