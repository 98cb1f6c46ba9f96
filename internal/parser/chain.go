package parser

import (
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/sirupsen/logrus"
)

// Chain tries an ordered list of parsers and keeps the first that accepts
// the input. The order is the caller's choice: put the strictest scheme
// first when inputs may be structurally compatible with several schemes.
type Chain []Parser

// ParserFor returns the parser of the chain implementing feedType
func (c Chain) ParserFor(feedType models.FeedType) (Parser, bool) {
	for _, p := range c {
		if p.FeedType() == feedType {
			return p, true
		}
	}
	return nil, false
}

// TryParseID returns the first successful ParseID
func (c Chain) TryParseID(packageID string) (models.BaseMetadata, bool) {
	for _, p := range c {
		meta, err := p.ParseID(packageID)
		if err == nil {
			return meta, true
		}
		logrus.Debugf("%s parser rejected package ID %s: %v", p.FeedType(), packageID, err)
	}
	return models.BaseMetadata{}, false
}

// TryParseFilename returns the first successful ParseFilename
func (c Chain) TryParseFilename(filename string, extensions []string) (models.Metadata, bool) {
	for _, p := range c {
		meta, err := p.ParseFilename(filename, extensions)
		if err == nil {
			return meta, true
		}
		logrus.Debugf("%s parser rejected file %s: %v", p.FeedType(), filename, err)
	}
	return models.Metadata{}, false
}

// TryParseServerFilename returns the first successful ParseServerFilename
func (c Chain) TryParseServerFilename(filename string, extensions []string) (models.Metadata, bool) {
	for _, p := range c {
		meta, err := p.ParseServerFilename(filename, extensions)
		if err == nil {
			return meta, true
		}
		logrus.Debugf("%s parser rejected server file %s: %v", p.FeedType(), filename, err)
	}
	return models.Metadata{}, false
}
