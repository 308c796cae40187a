package scrape

import (
	"net/http"
	"time"
)

// Group is an ordered set of fetchers whose output forms one aggregated document.
type Group struct {
	Label    string
	Fetchers []Fetcher
}

type Catalog struct {
	Forum            Group
	Encyclopedia     Group
	VanishedVillages Group
	HistoricalMaps   Group
}

// Historical returns the three groups used for historical analysis, in prompt order.
func (c Catalog) Historical() []Group {
	return []Group{c.Encyclopedia, c.VanishedVillages, c.HistoricalMaps}
}

type Options struct {
	UserAgent       string
	Timeout         time.Duration
	PolitenessDelay time.Duration
	Client          *http.Client
}

// DefaultCatalog returns the built-in Samara-region sources.
func DefaultCatalog(opts Options) Catalog {
	page := func(name, url, selector string, maxChars int) *PageSource {
		return &PageSource{
			Name:        name,
			URL:         url,
			Selector:    MustSelector(selector),
			UserAgent:   opts.UserAgent,
			MaxChars:    maxChars,
			MaxSnippets: 3,
			Timeout:     opts.Timeout,
			Client:      opts.Client,
		}
	}

	return Catalog{
		Forum: Group{
			Label: "Форумы кладоискателей",
			Fetchers: []Fetcher{
				page("samara-clad", "http://samara-clad.ru/", "div.post-content", 500),
				page("samarafishing", "https://samarafishing.ru/board/index.php?topic=40553.0", "div.post", 500),
				page("mdrussia", "https://mdrussia.ru/topic/89888-samarskaja-oblast/", "div.msg", 500),
			},
		},
		Encyclopedia: Group{
			Label: "Энциклопедия",
			Fetchers: []Fetcher{
				&WikiSource{
					Name:            "wikipedia",
					SearchURL:       "https://ru.wikipedia.org/w/index.php?search=%s&fulltext=1&ns0=1",
					Result:          MustSelector("div.mw-search-result-heading"),
					Content:         MustSelector("div.mw-parser-output"),
					MaxArticles:     3,
					MaxChars:        2000,
					MaxSnippets:     3,
					PolitenessDelay: opts.PolitenessDelay,
					UserAgent:       opts.UserAgent,
					Timeout:         opts.Timeout,
					Client:          opts.Client,
				},
			},
		},
		VanishedVillages: Group{
			Label: "Исчезнувшие сёла",
			Fetchers: []Fetcher{
				page("pomnirossiyu", "https://pomnirossiyu.ru/search/?q=%s", "div.entry", 1000),
			},
		},
		HistoricalMaps: Group{
			Label: "Старые карты",
			Fetchers: []Fetcher{
				page("etomesto", "http://www.etomesto.ru/search/?q=%s", "tr", 500),
			},
		},
	}
}
