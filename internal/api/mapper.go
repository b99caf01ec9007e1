package api

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/justchokingaround/cicidraci/pkg/types"
)

// DramaToTitle converts an API drama to a Title
func DramaToTitle(d Drama) types.Title {
	cover := d.CoverWap
	if cover == "" {
		cover = d.Cover
	}
	return types.Title{
		ID:           strings.TrimSpace(d.BookID),
		Name:         strings.TrimSpace(d.BookName),
		Cover:        cover,
		Synopsis:     strings.TrimSpace(d.Introduction),
		Tags:         lo.Compact(d.TagNames),
		EpisodeCount: int(d.ChapterCount),
		ViewCount:    string(d.PlayCount),
	}
}

// DramasToTitles converts a page of dramas, dropping entries without an id
func DramasToTitles(dramas []Drama) []types.Title {
	titles := lo.Map(dramas, func(d Drama, _ int) types.Title {
		return DramaToTitle(d)
	})
	return lo.Filter(titles, func(t types.Title, _ int) bool {
		return t.ID != ""
	})
}

// ChapterToEpisode converts an API chapter to an Episode
func ChapterToEpisode(c Chapter) types.Episode {
	groups := lo.Map(c.CdnList, func(cdn CdnList, _ int) types.SourceGroup {
		return types.SourceGroup{
			Domain: cdn.CdnDomain,
			Media: lo.Map(cdn.VideoPathList, func(v VideoPath, _ int) types.MediaSource {
				return types.MediaSource{Quality: int(v.Quality), URL: strings.TrimSpace(v.VideoPath)}
			}),
		}
	})
	return types.Episode{
		ID:      c.ChapterID,
		Index:   int(c.ChapterIndex),
		Name:    c.ChapterName,
		Sources: groups,
	}
}

// ChaptersToEpisodes converts chapters and orders them by ordinal index
func ChaptersToEpisodes(chapters []Chapter) []types.Episode {
	episodes := lo.Map(chapters, func(c Chapter, _ int) types.Episode {
		return ChapterToEpisode(c)
	})
	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].Index < episodes[j].Index
	})
	return episodes
}
