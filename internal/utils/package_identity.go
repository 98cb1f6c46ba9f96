package utils

import (
	"sort"
	"strings"

	"github.com/ralt/pkgmeta/internal/models"
)

// PackageIdentity returns a unique identifier for one artifact of a package
// version. NuGet names are case-insensitive, so they are folded to lower case.
func PackageIdentity(meta models.Metadata) string {
	parts := []string{meta.FeedType.String(), meta.PackageID, meta.Version, meta.FileExtension}
	if meta.FeedType == models.FeedTypeNuGet {
		for i := 1; i < len(parts); i++ {
			parts[i] = strings.ToLower(parts[i])
		}
	}
	return strings.Join(parts, ":")
}

// DetectConflicts returns packages from newPackages whose identity already
// exists in existing
func DetectConflicts(existing, newPackages []models.PhysicalMetadata) []models.PhysicalMetadata {
	existingMap := make(map[string]bool)
	for _, pkg := range existing {
		existingMap[PackageIdentity(pkg.Metadata)] = true
	}

	var conflicts []models.PhysicalMetadata
	for _, pkg := range newPackages {
		if existingMap[PackageIdentity(pkg.Metadata)] {
			conflicts = append(conflicts, pkg)
		}
	}
	return conflicts
}

// FindDuplicates groups packages sharing an identity, keeping only groups
// with more than one member. Keys are returned sorted.
func FindDuplicates(packages []models.PhysicalMetadata) ([]string, map[string][]models.PhysicalMetadata) {
	groups := make(map[string][]models.PhysicalMetadata)
	for _, pkg := range packages {
		id := PackageIdentity(pkg.Metadata)
		groups[id] = append(groups[id], pkg)
	}

	var keys []string
	for id, group := range groups {
		if len(group) < 2 {
			delete(groups, id)
			continue
		}
		keys = append(keys, id)
	}
	sort.Strings(keys)

	return keys, groups
}
