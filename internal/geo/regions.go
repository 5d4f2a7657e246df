// Package geo holds the fixed region/prefecture classification and the
// grouping that turns the flat lid catalog into the ordered hierarchy the
// pages render.
package geo

import "fmt"

// RegionLabels maps region id to its display label.
var RegionLabels = map[int64]string{
	1: "北海道・東北",
	2: "関東",
	3: "中部",
	4: "近畿",
	5: "中国・四国",
	6: "九州・沖縄",
}

// RegionOrder is the canonical render order of regions. Lids whose region is
// not listed here are dropped from grouped output entirely.
var RegionOrder = []int64{1, 2, 3, 4, 5, 6}

// PrefectureLabels maps prefecture id to its display label.
var PrefectureLabels = map[int64]string{
	1:  "北海道",
	2:  "青森県",
	3:  "岩手県",
	4:  "宮城県",
	5:  "秋田県",
	6:  "山形県",
	7:  "福島県",
	8:  "茨城県",
	9:  "栃木県",
	10: "埼玉県",
	11: "千葉県",
	12: "東京都",
	13: "神奈川県",
	14: "群馬県",
	15: "新潟県",
	16: "富山県",
	17: "石川県",
	18: "福井県",
	19: "岐阜県",
	20: "静岡県",
	21: "愛知県",
	22: "山梨県",
	23: "長野県",
	24: "三重県",
	25: "滋賀県",
	26: "京都府",
	27: "大阪府",
	28: "兵庫県",
	29: "奈良県",
	30: "和歌山県",
	31: "鳥取県",
	32: "島根県",
	33: "岡山県",
	34: "山口県",
	35: "徳島県",
	36: "香川県",
	37: "愛媛県",
	38: "高知県",
	39: "広島県",
	40: "福岡県",
	41: "佐賀県",
	42: "長崎県",
	43: "宮崎県",
	44: "鹿児島県",
	45: "沖縄県",
	46: "熊本県",
	47: "大分県",
}

// PrefectureIDsByRegion is the canonical prefecture order within each
// region. A region missing from this table renders only the prefectures
// actually present in its data, in ascending id order.
var PrefectureIDsByRegion = map[int64][]int64{
	1: {1, 2, 3, 4, 5, 6, 7},
	2: {8, 9, 10, 11, 12, 13, 14},
	3: {15, 16, 17, 18, 19, 20, 21, 22, 23},
	4: {24, 25, 26, 27, 28, 29, 30},
	5: {31, 32, 33, 34, 35, 36, 37, 38, 39},
	6: {40, 41, 42, 43, 44, 45, 46, 47},
}

// UnsetPrefectureID is the bucket for lids with no prefecture assigned.
const UnsetPrefectureID int64 = 0

// PrefectureName resolves a prefecture id to its label. The unset sentinel
// resolves to "未設定" and an id missing from the table gets a synthetic
// label; it never fails.
func PrefectureName(id int64) string {
	if id == UnsetPrefectureID {
		return "未設定"
	}
	if name, ok := PrefectureLabels[id]; ok {
		return name
	}
	return fmt.Sprintf("都道府県%d", id)
}

// RegionName resolves a region id to its label.
func RegionName(id int64) string {
	if name, ok := RegionLabels[id]; ok {
		return name
	}
	return fmt.Sprintf("地方%d", id)
}
