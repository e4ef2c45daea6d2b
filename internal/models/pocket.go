package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// State filters retrieved items by read state.
type State string

const (
	StateAll     State = "all"
	StateUnread  State = "unread"
	StateArchive State = "archive"
)

// DetailType selects how much of each item is returned.
type DetailType string

const (
	DetailSimple   DetailType = "simple"
	DetailComplete DetailType = "complete"
)

// Sort orders a retrieved list.
type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
	SortTitle  Sort = "title"
	SortSite   Sort = "site"
)

// ContentType filters retrieved items by kind.
type ContentType string

const (
	ContentArticle ContentType = "article"
	ContentVideo   ContentType = "video"
	ContentImage   ContentType = "image"
)

// TagUntagged matches items without any tag.
const TagUntagged = "_untagged_"

// Favorite is the favorite filter flag.
type Favorite int

const (
	FavoriteNo  Favorite = 0
	FavoriteYes Favorite = 1
)

// AddRequest is the body of /v3/add without credentials.
type AddRequest struct {
	URL     string   `json:"url" validate:"required,url"`
	Title   string   `json:"title,omitempty"`
	Tags    []string `json:"-"`
	TweetID string   `json:"tweet_id,omitempty"`
}

// Params flattens the request into the wire form, tags comma separated.
func (r AddRequest) Params() map[string]any {
	params := map[string]any{"url": r.URL}
	if r.Title != "" {
		params["title"] = r.Title
	}
	if len(r.Tags) > 0 {
		params["tags"] = strings.Join(r.Tags, ",")
	}
	if r.TweetID != "" {
		params["tweet_id"] = r.TweetID
	}
	return params
}

// RetrieveRequest holds the /v3/get filters. Zero values are omitted.
type RetrieveRequest struct {
	State       State
	Favorite    *Favorite
	Tag         string
	ContentType ContentType
	Sort        Sort
	DetailType  DetailType
	Search      string
	Domain      string
	Since       *time.Time
	Count       int
	Offset      int
}

// Params flattens the request into the wire form.
func (r RetrieveRequest) Params() map[string]any {
	params := map[string]any{}
	if r.State != "" {
		params["state"] = string(r.State)
	}
	if r.Favorite != nil {
		params["favorite"] = strconv.Itoa(int(*r.Favorite))
	}
	if r.Tag != "" {
		params["tag"] = r.Tag
	}
	if r.ContentType != "" {
		params["contentType"] = string(r.ContentType)
	}
	if r.Sort != "" {
		params["sort"] = string(r.Sort)
	}
	if r.DetailType != "" {
		params["detailType"] = string(r.DetailType)
	}
	if r.Search != "" {
		params["search"] = r.Search
	}
	if r.Domain != "" {
		params["domain"] = r.Domain
	}
	if r.Since != nil {
		params["since"] = r.Since.Unix()
	}
	if r.Count > 0 {
		params["count"] = strconv.Itoa(r.Count)
	}
	if r.Offset > 0 {
		params["offset"] = strconv.Itoa(r.Offset)
	}
	return params
}

// Action is a single entry of a /v3/modify request.
type Action struct {
	Action string `json:"action"`
	ItemID string `json:"item_id,omitempty"`
	URL    string `json:"url,omitempty"`
	Tags   string `json:"tags,omitempty"`
	OldTag string `json:"old_tag,omitempty"`
	NewTag string `json:"new_tag,omitempty"`
	Time   int64  `json:"time,omitempty"`
}

func itemAction(action, itemID string) Action {
	return Action{Action: action, ItemID: itemID}
}

func ArchiveAction(itemID string) Action    { return itemAction("archive", itemID) }
func ReaddAction(itemID string) Action      { return itemAction("readd", itemID) }
func FavoriteAction(itemID string) Action   { return itemAction("favorite", itemID) }
func UnfavoriteAction(itemID string) Action { return itemAction("unfavorite", itemID) }
func DeleteAction(itemID string) Action     { return itemAction("delete", itemID) }
func TagsClearAction(itemID string) Action  { return itemAction("tags_clear", itemID) }

// AddAction adds a new item by URL.
func AddAction(url string) Action {
	return Action{Action: "add", URL: url}
}

func TagsAddAction(itemID string, tags ...string) Action {
	return Action{Action: "tags_add", ItemID: itemID, Tags: strings.Join(tags, ",")}
}

func TagsRemoveAction(itemID string, tags ...string) Action {
	return Action{Action: "tags_remove", ItemID: itemID, Tags: strings.Join(tags, ",")}
}

func TagsReplaceAction(itemID string, tags ...string) Action {
	return Action{Action: "tags_replace", ItemID: itemID, Tags: strings.Join(tags, ",")}
}

// TagRenameAction renames a tag across all items.
func TagRenameAction(oldTag, newTag string) Action {
	return Action{Action: "tag_rename", OldTag: oldTag, NewTag: newTag}
}

// ModifyRequest is the body of /v3/modify without credentials.
type ModifyRequest struct {
	Actions []Action `json:"actions" validate:"required,min=1"`
}

// Params flattens the request into the wire form.
func (r ModifyRequest) Params() map[string]any {
	return map[string]any{"actions": r.Actions}
}

// AddResult is the decoded /v3/add response. Item is passed through untouched.
type AddResult struct {
	Status int             `json:"status"`
	Item   json.RawMessage `json:"item"`
}

// ModifyResult is the decoded /v3/modify response.
type ModifyResult struct {
	Status        int               `json:"status"`
	ActionResults []json.RawMessage `json:"action_results"`
}

// RetrieveResult is the decoded /v3/get response. List is passed through untouched.
type RetrieveResult struct {
	Status int             `json:"status"`
	List   json.RawMessage `json:"list"`
}

// Authorization is the terminal result of a successful handshake.
type Authorization struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
}
