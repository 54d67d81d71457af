package extract

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/logging"
)

const (
	unknownAuthor = "Unknown"
	unknownHandle = "unknown"

	// DefaultMirrorTimeout bounds each mirror attempt.
	DefaultMirrorTimeout = 10 * time.Second
)

// TwitterEndpoints are the base URLs of the tweet mirrors, tried in field
// order.
type TwitterEndpoints struct {
	FxTwitter   string
	VxTwitter   string
	Syndication string
}

// DefaultTwitterEndpoints are the public mirror hosts.
var DefaultTwitterEndpoints = TwitterEndpoints{
	FxTwitter:   "https://api.fxtwitter.com",
	VxTwitter:   "https://api.vxtwitter.com",
	Syndication: "https://cdn.syndication.twimg.com",
}

// Tweet is a normalized post from any mirror.
type Tweet struct {
	ID       string
	Author   string
	Handle   string
	Text     string
	Likes    int
	Retweets int
}

// Format renders the tweet as a prompt-ready block.
func (t *Tweet) Format() string {
	return fmt.Sprintf("Author: %s (@%s)\n\n%s\n\nEngagement: %d likes, %d reposts",
		t.Author, t.Handle, t.Text, t.Likes, t.Retweets)
}

// TwitterExtractor fetches a tweet through three independent mirrors.
type TwitterExtractor struct {
	fetcher   *Fetcher
	endpoints TwitterEndpoints
	timeout   time.Duration
	log       *logging.Logger
}

func NewTwitterExtractor(fetcher *Fetcher, endpoints TwitterEndpoints, timeout time.Duration, log *logging.Logger) *TwitterExtractor {
	if timeout <= 0 {
		timeout = DefaultMirrorTimeout
	}
	return &TwitterExtractor{fetcher: fetcher, endpoints: endpoints, timeout: timeout, log: orNop(log)}
}

// Fetch returns the tweet and the name of the mirror that served it. When
// every mirror fails the FetchError lists each mirror's reason.
func (e *TwitterExtractor) Fetch(ctx context.Context, tweetID string) (*Tweet, string, error) {
	providers := []Provider[*Tweet]{
		{Name: "fxtwitter", Fetch: func(ctx context.Context) (*Tweet, error) { return e.fromFxTwitter(ctx, tweetID) }},
		{Name: "vxtwitter", Fetch: func(ctx context.Context) (*Tweet, error) { return e.fromVxTwitter(ctx, tweetID) }},
		{Name: "syndication", Fetch: func(ctx context.Context) (*Tweet, error) { return e.fromSyndication(ctx, tweetID) }},
	}

	chain := Chain[*Tweet]{Service: "twitter", Timeout: e.timeout, Log: e.log.With("tweet_id", tweetID)}
	tweet, method, err := chain.Run(ctx, providers)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", tweetFetchError(err)
	}

	tweet.ID = tweetID
	return tweet, method, nil
}

// tweetFetchError reports an exhausted mirror chain as a FetchError that
// lists the methods tried.
func tweetFetchError(err error) *errors.BriefError {
	fetchErr := errors.NewFetch("could not fetch tweet: "+err.Error(), err)
	var chainErr *ChainError
	if stderrors.As(err, &chainErr) {
		fetchErr.Details = map[string]any{"methods": chainErr.Methods()}
	}
	return fetchErr
}

func (e *TwitterExtractor) fromFxTwitter(ctx context.Context, id string) (*Tweet, error) {
	var resp struct {
		Code  int `json:"code"`
		Tweet *struct {
			Text   string `json:"text"`
			Author struct {
				Name       string `json:"name"`
				ScreenName string `json:"screen_name"`
			} `json:"author"`
			Likes    int `json:"likes"`
			Retweets int `json:"retweets"`
		} `json:"tweet"`
	}
	if err := e.fetcher.GetJSON(ctx, joinURL(e.endpoints.FxTwitter, "/status/"+id), &resp); err != nil {
		return nil, err
	}
	if resp.Code != 200 || resp.Tweet == nil {
		return nil, fmt.Errorf("tweet not found (code: %d)", resp.Code)
	}
	if strings.TrimSpace(resp.Tweet.Text) == "" {
		return nil, fmt.Errorf("tweet content not found")
	}
	return newTweet(resp.Tweet.Author.Name, resp.Tweet.Author.ScreenName, resp.Tweet.Text, resp.Tweet.Likes, resp.Tweet.Retweets), nil
}

func (e *TwitterExtractor) fromVxTwitter(ctx context.Context, id string) (*Tweet, error) {
	var resp struct {
		Text           string `json:"text"`
		UserName       string `json:"user_name"`
		UserScreenName string `json:"user_screen_name"`
		Likes          int    `json:"likes"`
		Retweets       int    `json:"retweets"`
	}
	if err := e.fetcher.GetJSON(ctx, joinURL(e.endpoints.VxTwitter, "/status/"+id), &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, fmt.Errorf("tweet content not found")
	}
	return newTweet(resp.UserName, resp.UserScreenName, resp.Text, resp.Likes, resp.Retweets), nil
}

func (e *TwitterExtractor) fromSyndication(ctx context.Context, id string) (*Tweet, error) {
	var resp struct {
		Text string `json:"text"`
		User struct {
			Name       string `json:"name"`
			ScreenName string `json:"screen_name"`
		} `json:"user"`
		FavoriteCount int `json:"favorite_count"`
		RetweetCount  int `json:"retweet_count"`
	}
	target := joinURL(e.endpoints.Syndication, "/tweet-result") + "?id=" + url.QueryEscape(id)
	if err := e.fetcher.GetJSON(ctx, target, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, fmt.Errorf("tweet content not found in syndication")
	}
	return newTweet(resp.User.Name, resp.User.ScreenName, resp.Text, resp.FavoriteCount, resp.RetweetCount), nil
}

func newTweet(author, handle, text string, likes, retweets int) *Tweet {
	if author == "" {
		author = unknownAuthor
	}
	if handle == "" {
		handle = unknownHandle
	}
	return &Tweet{Author: author, Handle: handle, Text: strings.TrimSpace(text), Likes: likes, Retweets: retweets}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
