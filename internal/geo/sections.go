package geo

import (
	"math"
	"sort"

	"github.com/ymori/futalog/internal/domain"
)

// RegionSection is the grouped view of one region: its lids partitioned by
// prefecture and the prefecture ids in final render order.
type RegionSection struct {
	RegionID         int64
	Lids             []domain.LidSummary
	LidsByPrefecture map[int64][]domain.LidSummary
	PrefectureIDs    []int64
}

// BuildRegionSections partitions lids into the canonical region →
// prefecture hierarchy. Output regions follow RegionOrder; every canonical
// region appears even when empty. Within a prefecture, lids sort by
// prefecture order ascending with unset values last, ties broken by id.
// Prefectures render in canonical order first, then any ids outside the
// canonical table ascending, keeping only prefectures that have lids.
// Lids with a non-positive id or a region outside RegionOrder are skipped.
func BuildRegionSections(lids []domain.LidSummary) []RegionSection {
	byRegion := make(map[int64][]domain.LidSummary, len(RegionOrder))
	for _, lid := range lids {
		if lid.ID <= 0 {
			continue
		}
		byRegion[lid.RegionID] = append(byRegion[lid.RegionID], lid)
	}

	sections := make([]RegionSection, 0, len(RegionOrder))
	for _, regionID := range RegionOrder {
		regionLids := byRegion[regionID]

		byPrefecture := make(map[int64][]domain.LidSummary)
		for _, lid := range regionLids {
			prefID := UnsetPrefectureID
			if lid.PrefectureID != nil {
				prefID = *lid.PrefectureID
			}
			byPrefecture[prefID] = append(byPrefecture[prefID], lid)
		}

		for _, group := range byPrefecture {
			sortByPrefectureOrder(group)
		}

		canonical := PrefectureIDsByRegion[regionID]
		inCanonical := make(map[int64]bool, len(canonical))
		for _, id := range canonical {
			inCanonical[id] = true
		}
		var extras []int64
		for id := range byPrefecture {
			if !inCanonical[id] {
				extras = append(extras, id)
			}
		}
		sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })

		var render []int64
		for _, id := range append(append([]int64{}, canonical...), extras...) {
			if _, ok := byPrefecture[id]; ok {
				render = append(render, id)
			}
		}

		sections = append(sections, RegionSection{
			RegionID:         regionID,
			Lids:             regionLids,
			LidsByPrefecture: byPrefecture,
			PrefectureIDs:    render,
		})
	}
	return sections
}

// sortByPrefectureOrder orders one prefecture's lids by prefecture_order
// ascending with unset values last, then by id for determinism.
func sortByPrefectureOrder(lids []domain.LidSummary) {
	sort.SliceStable(lids, func(i, j int) bool {
		oi := orderKey(lids[i].PrefectureOrder)
		oj := orderKey(lids[j].PrefectureOrder)
		if oi != oj {
			return oi < oj
		}
		return lids[i].ID < lids[j].ID
	})
}

func orderKey(order *int64) int64 {
	if order == nil {
		return math.MaxInt64
	}
	return *order
}

// GroupSelections arranges a staged bulk batch for the confirmation page:
// region → prefecture → entries sorted by lid id. Only regions and
// prefectures present in the batch are returned, prefectures in ascending
// id order.
func GroupSelections(rows []domain.LidSummary) []RegionSection {
	sections := BuildRegionSections(rows)
	grouped := make([]RegionSection, 0, len(sections))
	for _, sec := range sections {
		if len(sec.Lids) == 0 {
			continue
		}
		for _, group := range sec.LidsByPrefecture {
			sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		}
		sort.Slice(sec.PrefectureIDs, func(i, j int) bool {
			return sec.PrefectureIDs[i] < sec.PrefectureIDs[j]
		})
		grouped = append(grouped, sec)
	}
	return grouped
}
