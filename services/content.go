package services

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/TokDenis/folio/sorting"
	"github.com/TokDenis/folio/types"
	"github.com/gosimple/slug"
	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	ArchiveDir = "archive"
	DraftDir   = "draft"
)

var ErrNoFrontMatter = errors.New("missing front matter")
var ErrDuplicateSlug = errors.New("duplicate slug")
var ErrPostNotFound = errors.New("post not found")

// Content holds the posts found under a content root: published posts at the
// top level, archived posts in archive/. Drafts in draft/ are never loaded.
type Content struct {
	root string
	md   goldmark.Markdown

	mu      sync.RWMutex
	posts   []types.Post
	archive []types.Post
}

func NewContent(root string) (*Content, error) {
	c := &Content{
		root: root,
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}

	err := c.Reload()
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Reload reads the content root again.
func (c *Content) Reload() error {
	posts, err := loadPosts(c.root, false)
	if err != nil {
		return err
	}

	archive, err := loadPosts(filepath.Join(c.root, ArchiveDir), true)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.posts, c.archive = posts, archive
	c.mu.Unlock()

	log.Info().Int("posts", len(posts)).Int("archived", len(archive)).Str("root", c.root).Msg("content loaded")

	return nil
}

// Posts returns a copy of the published or archived posts, in file name order.
func (c *Content) Posts(archived bool) []types.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()

	src := c.posts
	if archived {
		src = c.archive
	}

	posts := make([]types.Post, len(src))
	copy(posts, src)
	return posts
}

func (c *Content) Find(slug string, archived bool) (types.Post, error) {
	for _, post := range c.Posts(archived) {
		if post.Slug == slug {
			return post, nil
		}
	}
	return types.Post{}, ErrPostNotFound
}

// Render returns post with its markdown body converted to HTML.
func (c *Content) Render(post types.Post) (*types.PostPage, error) {
	var buf bytes.Buffer

	err := c.md.Convert([]byte(post.Body), &buf)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", post.Slug, err)
	}

	return &types.PostPage{Post: post, HTML: buf.String()}, nil
}

func loadPosts(dir string, archived bool) ([]types.Post, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return []types.Post{}, nil
	}

	dirents, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return nil, err
	}

	sort.Slice(dirents, func(i, j int) bool { return dirents[i].Name() < dirents[j].Name() })

	posts := make([]types.Post, 0, len(dirents))
	seen := make(map[string]string)

	for _, de := range dirents {
		ext := filepath.Ext(de.Name())
		if !de.IsRegular() || (ext != ".md" && ext != ".mdx") {
			continue
		}

		b, err := os.ReadFile(filepath.Join(dir, de.Name()))
		if err != nil {
			return nil, err
		}

		post, err := ParsePost(de.Name(), b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", de.Name(), err)
		}
		post.Archived = archived

		if other, ok := seen[post.Slug]; ok {
			return nil, fmt.Errorf("%w %q: %s and %s", ErrDuplicateSlug, post.Slug, other, de.Name())
		}
		seen[post.Slug] = de.Name()

		if _, ok := sorting.ParseDate(post.PublishedAt); !ok {
			log.Warn().Str("file", de.Name()).Str("publishedAt", post.PublishedAt).Msg("unparseable publish date, post sorts last")
		}

		posts = append(posts, post)
	}

	return posts, nil
}

// ParsePost reads a markdown file whose YAML front matter sits between two "---" lines.
func ParsePost(name string, b []byte) (types.Post, error) {
	b = bytes.TrimPrefix(b, []byte("\ufeff"))
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))

	if !bytes.HasPrefix(b, []byte("---\n")) {
		return types.Post{}, ErrNoFrontMatter
	}

	rest := b[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return types.Post{}, ErrNoFrontMatter
	}

	var post types.Post
	err := yaml.Unmarshal(rest[:end], &post)
	if err != nil {
		return types.Post{}, fmt.Errorf("front matter: %w", err)
	}

	body := rest[end+len("\n---"):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}

	post.Slug = slug.Make(strings.TrimSuffix(name, filepath.Ext(name)))
	post.Body = strings.TrimSpace(string(body))

	return post, nil
}
