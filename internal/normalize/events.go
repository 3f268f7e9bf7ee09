package normalize

// EventGroup is a coarse track and field event family a coach is responsible for.
type EventGroup string

const (
	Sprints  EventGroup = "sprints"
	Distance EventGroup = "distance"
	Throws   EventGroup = "throws"
	Jumps    EventGroup = "jumps"
	Hurdles  EventGroup = "hurdles"
	Relays   EventGroup = "relays"
	Combined EventGroup = "combined"
)

// eventGroupRules is matched against free responsibility text. Table order is
// the tie-break for the primary specialty.
var eventGroupRules = []Rule[EventGroup]{
	{Value: Sprints, Keywords: []string{"sprint", "dash", "60m", "100m", "200m", "400m", "100 m", "200 m", "400 m"}},
	{Value: Distance, Keywords: []string{"distance", "800", "1500", "mile", "5000", "5k", "10k", "10,000", "steeple", "cross country", "marathon"}},
	{Value: Throws, Keywords: []string{"throw", "shot", "discus", "javelin", "hammer"}},
	{Value: Jumps, Keywords: []string{"jump", "vault"}},
	{Value: Hurdles, Keywords: []string{"hurdle"}},
	{Value: Relays, Keywords: []string{"relay", "4x"}},
	{Value: Combined, Keywords: []string{"combined", "multi-event", "multis", "multi event", "heptathlon", "decathlon", "pentathlon"}},
}

// specificEventRules maps keywords to canonical event names as stored in the
// events reference table.
var specificEventRules = []Rule[string]{
	{Value: "60m", Keywords: []string{"60m", "60 m"}},
	{Value: "100m", Keywords: []string{"100m", "100 m", "100 meter"}},
	{Value: "200m", Keywords: []string{"200m", "200 m", "200 meter"}},
	{Value: "400m", Keywords: []string{"400m", "400 m", "400 meter"}},
	{Value: "800m", Keywords: []string{"800m", "800 m", "800 meter"}},
	{Value: "1500m", Keywords: []string{"1500", "1,500"}},
	{Value: "Mile", Keywords: []string{"mile"}},
	{Value: "3000m Steeplechase", Keywords: []string{"steeple"}},
	{Value: "5000m", Keywords: []string{"5000", "5,000", "5k"}},
	{Value: "10000m", Keywords: []string{"10000", "10,000", "10k"}},
	{Value: "100m Hurdles", Keywords: []string{"100m hurdles", "100 m hurdles", "100h"}},
	{Value: "110m Hurdles", Keywords: []string{"110m hurdles", "110 m hurdles", "110h"}},
	{Value: "400m Hurdles", Keywords: []string{"400m hurdles", "400 m hurdles", "400h"}},
	{Value: "4x100m Relay", Keywords: []string{"4x100", "4 x 100"}},
	{Value: "4x400m Relay", Keywords: []string{"4x400", "4 x 400"}},
	{Value: "High Jump", Keywords: []string{"high jump"}},
	{Value: "Long Jump", Keywords: []string{"long jump"}},
	{Value: "Triple Jump", Keywords: []string{"triple jump"}},
	{Value: "Pole Vault", Keywords: []string{"pole vault", "vault"}},
	{Value: "Shot Put", Keywords: []string{"shot put", "shot"}},
	{Value: "Discus", Keywords: []string{"discus"}},
	{Value: "Javelin", Keywords: []string{"javelin"}},
	{Value: "Hammer", Keywords: []string{"hammer"}},
	{Value: "Weight Throw", Keywords: []string{"weight throw"}},
	{Value: "Heptathlon", Keywords: []string{"heptathlon"}},
	{Value: "Decathlon", Keywords: []string{"decathlon"}},
	{Value: "Pentathlon", Keywords: []string{"pentathlon"}},
}

// eventNameGroupRules classifies a stored event name into one group. Hurdles
// and relays come first so "100m Hurdles" is not taken for a sprint.
var eventNameGroupRules = []Rule[EventGroup]{
	{Value: Hurdles, Keywords: []string{"hurdle"}},
	{Value: Relays, Keywords: []string{"relay", "4x"}},
	{Value: Combined, Keywords: []string{"heptathlon", "decathlon", "pentathlon"}},
	{Value: Throws, Keywords: []string{"shot", "discus", "javelin", "hammer", "weight"}},
	{Value: Jumps, Keywords: []string{"jump", "vault"}},
	{Value: Distance, Keywords: []string{"800", "1500", "mile", "3000", "5000", "10000", "steeple", "marathon", "cross country"}},
	{Value: Sprints, Keywords: []string{"60m", "100m", "200m", "400m", "dash"}},
}

// EventGroupsFromText returns every event group mentioned in text.
func EventGroupsFromText(text string) []EventGroup {
	return MatchAll(eventGroupRules, text)
}

// PrimarySpecialtyFromText returns the first event group mentioned in text.
func PrimarySpecialtyFromText(text string) (EventGroup, bool) {
	return Match(eventGroupRules, text)
}

// SpecificEventNamesFromText returns the canonical names of the specific
// events mentioned in text.
func SpecificEventNamesFromText(text string) []string {
	return MatchAll(specificEventRules, text)
}

// EventGroupOfEventName tells which group a stored event belongs to.
func EventGroupOfEventName(name string) (EventGroup, bool) {
	return Match(eventNameGroupRules, name)
}

// KnownEventNames returns the canonical names of the specific events, in
// table order.
func KnownEventNames() []string {
	names := make([]string, 0, len(specificEventRules))
	for _, r := range specificEventRules {
		names = append(names, r.Value)
	}
	return names
}
