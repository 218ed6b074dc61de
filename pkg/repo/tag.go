package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/gitcore/pkg/errs"
	"github.com/odvcencio/gitcore/pkg/hash"
	"github.com/odvcencio/gitcore/pkg/object"
	"github.com/odvcencio/gitcore/pkg/refs"
	"github.com/odvcencio/gitcore/pkg/sign"
)

// CreateTag creates or updates a lightweight tag ref under refs/tags/,
// pointing directly at target.
func (r *Repo) CreateTag(name string, target hash.Hash, force bool) error {
	if err := validateTagName(name); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	refName := "refs/tags/" + name
	if !force {
		if _, err := r.Refs.Get(refName); err == nil {
			return fmt.Errorf("create tag %q: %w", name, errs.ErrConflict)
		}
	}
	if err := r.Refs.Put(refs.Reference{Name: refName, Hash: target}); err != nil {
		return fmt.Errorf("create tag %q: %w", name, err)
	}
	return nil
}

// CreateAnnotatedTag writes a tag object pointing at target and creates or
// updates refs/tags/<name> to point at it. Signer is optional; when nil no
// signature is attached. Otherwise it signs the unsigned tag payload and
// the signature is appended to the message after a newline, so it becomes
// part of the stored tag object.
func (r *Repo) CreateAnnotatedTag(name string, target hash.Hash, targetKind object.Kind, tagger object.Signature, message string, force bool, signer sign.Signer) (hash.Hash, error) {
	if err := validateTagName(name); err != nil {
		return hash.Hash{}, fmt.Errorf("create annotated tag: %w", err)
	}
	refName := "refs/tags/" + name
	if !force {
		if _, err := r.Refs.Get(refName); err == nil {
			return hash.Hash{}, fmt.Errorf("create annotated tag %q: %w", name, errs.ErrConflict)
		}
	}

	tag := &object.Tag{
		Object:  target,
		Kind:    targetKind,
		Name:    name,
		Tagger:  tagger,
		Message: message,
	}
	if signer != nil {
		sig, err := signer(object.MarshalTag(tag))
		if err != nil {
			return hash.Hash{}, fmt.Errorf("create annotated tag %q: sign: %w", name, err)
		}
		tag.Message = tag.Message + "\n" + sig
	}

	tagHash, err := r.Store.WriteTag(tag)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("create annotated tag %q: %w", name, err)
	}
	if err := r.Refs.Put(refs.Reference{Name: refName, Hash: tagHash}); err != nil {
		return hash.Hash{}, fmt.Errorf("create annotated tag %q: %w", name, err)
	}
	return tagHash, nil
}

// DeleteTag removes refs/tags/<name>.
func (r *Repo) DeleteTag(name string) error {
	if err := validateTagName(name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if err := r.Refs.Delete("refs/tags/" + name); err != nil {
		return fmt.Errorf("delete tag %q: %w", name, err)
	}
	return nil
}

// ListTags returns every refs/tags/<name> short name, sorted.
func (r *Repo) ListTags() ([]string, error) {
	list, err := r.Refs.List("refs/tags/")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	names := make([]string, 0, len(list))
	for _, ref := range list {
		names = append(names, strings.TrimPrefix(ref.Name, "refs/tags/"))
	}
	sort.Strings(names)
	return names, nil
}

func validateTagName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("tag name is required")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid tag name %q", name)
	}
	if strings.ContainsAny(name, " \t\n\r") {
		return fmt.Errorf("invalid tag name %q", name)
	}
	return nil
}
