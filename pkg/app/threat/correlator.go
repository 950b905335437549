package threat

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain/threat"
	"github.com/avct/uasurfer"
	"github.com/sirupsen/logrus"
)

const (
	subnetMatchFactor    = 0.75
	networkMatchFactor   = 0.5
	userAgentMatchFactor = 0.7
)

//go:generate mockery --name=Correlator --dir=. --output=../../mocks --filename=threat_correlator_mock.go --case=underscore --with-expecter
type Correlator interface {
	Ingest(indicators ...threat.Indicator)
	Correlate(attrs threat.Attributes) []threat.Match
}

// correlator keeps indicators in a copy-on-write snapshot so in-flight
// correlations never observe a partially updated set. Ingest serializes
// on a mutex; Correlate is lock-free.
type correlator struct {
	mu       sync.Mutex
	snapshot atomic.Value // map[string]threat.Indicator
	logger   *logrus.Logger
	now      func() time.Time
}

func NewCorrelator(logger *logrus.Logger) Correlator {
	c := &correlator{
		logger: logger,
		now:    time.Now,
	}
	c.snapshot.Store(map[string]threat.Indicator{})
	return c
}

// Ingest upserts indicators by value+type, last-write-wins on confidence
// and metadata.
func (c *correlator) Ingest(indicators ...threat.Indicator) {
	if len(indicators) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, _ := c.snapshot.Load().(map[string]threat.Indicator)
	next := make(map[string]threat.Indicator, len(current)+len(indicators))
	for k, v := range current {
		next[k] = v
	}
	for _, ind := range indicators {
		if ind.Value == "" || ind.Type == "" {
			c.logger.WithField("source", ind.Source).Warn("skipping indicator without value or type")
			continue
		}
		if existing, ok := next[ind.Key()]; ok && ind.FirstSeen.IsZero() {
			ind.FirstSeen = existing.FirstSeen
		}
		next[ind.Key()] = ind
	}
	c.snapshot.Store(next)
}

// Correlate matches request attributes against the current snapshot,
// first on exact value equality, then on bounded fuzzy matches with
// reduced confidence. An empty store yields no matches, never an error.
func (c *correlator) Correlate(attrs threat.Attributes) []threat.Match {
	indicators, _ := c.snapshot.Load().(map[string]threat.Indicator)
	if len(indicators) == 0 {
		return nil
	}

	now := c.now()
	matches := make([]threat.Match, 0)
	matched := make(map[string]bool)

	exact := func(indType threat.IndicatorType, value string) {
		if value == "" {
			return
		}
		key := string(indType) + ":" + value
		ind, ok := indicators[key]
		if !ok || !ind.ActiveAt(now) {
			return
		}
		matched[key] = true
		matches = append(matches, threat.Match{
			Indicator:  ind,
			Confidence: ind.Confidence,
			Exact:      true,
			Reason:     "exact " + string(indType) + " match",
		})
	}

	exact(threat.IndicatorIP, attrs.SourceIP)
	exact(threat.IndicatorUserAgent, attrs.UserAgent)
	exact(threat.IndicatorURL, attrs.URL)

	for key, ind := range indicators {
		if matched[key] || !ind.ActiveAt(now) {
			continue
		}
		switch ind.Type {
		case threat.IndicatorIP:
			if attrs.SourceIP == "" {
				continue
			}
			switch sharedOctets(attrs.SourceIP, ind.Value) {
			case 3:
				matches = append(matches, threat.Match{
					Indicator:  ind,
					Confidence: ind.Confidence * subnetMatchFactor,
					Reason:     "shared /24 subnet with known indicator",
				})
			case 2:
				matches = append(matches, threat.Match{
					Indicator:  ind,
					Confidence: ind.Confidence * networkMatchFactor,
					Reason:     "shared /16 network with known indicator",
				})
			}
		case threat.IndicatorUserAgent:
			if attrs.UserAgent != "" && similarUserAgent(attrs.UserAgent, ind.Value) {
				matches = append(matches, threat.Match{
					Indicator:  ind,
					Confidence: ind.Confidence * userAgentMatchFactor,
					Reason:     "user agent family matches known indicator",
				})
			}
		case threat.IndicatorURL:
			if attrs.URL != "" && strings.Contains(strings.ToLower(attrs.URL), strings.ToLower(ind.Value)) {
				matches = append(matches, threat.Match{
					Indicator:  ind,
					Confidence: ind.Confidence * subnetMatchFactor,
					Reason:     "url contains known fragment",
				})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	return matches
}

// sharedOctets counts the leading octets two IPv4 addresses have in
// common, up to three. Non-IPv4 inputs count as zero.
func sharedOctets(a, b string) int {
	partsA := strings.Split(a, ".")
	partsB := strings.Split(b, ".")
	if len(partsA) != 4 || len(partsB) != 4 {
		return 0
	}
	shared := 0
	for i := 0; i < 3; i++ {
		if partsA[i] != partsB[i] {
			break
		}
		shared++
	}
	return shared
}

// similarUserAgent reports whether both user agents resolve to the same
// browser and OS family.
func similarUserAgent(a, b string) bool {
	uaA := uasurfer.Parse(a)
	uaB := uasurfer.Parse(b)
	if uaA.Browser.Name == uasurfer.BrowserUnknown || uaB.Browser.Name == uasurfer.BrowserUnknown {
		return false
	}
	return uaA.Browser.Name == uaB.Browser.Name && uaA.OS.Name == uaB.OS.Name
}
