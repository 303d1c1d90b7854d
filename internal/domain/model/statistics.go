package model

// Statistics is the backend's aggregate view over the whole collection.
type Statistics struct {
	TotalLots      int64            `json:"totalLots"`
	TotalBuildings int64            `json:"totalBatiments"`
	TotalOccupants int64            `json:"totalOccupants"`
	TotalHappix    int64            `json:"totalHappix"`
	StatusCount    map[string]int64 `json:"statutCount"`
	BuildingCount  map[string]int64 `json:"batimentCount"`
	OccupiedLots   int64            `json:"lotsAvecOccupants"`
	VacantLots     int64            `json:"lotsVides"`
	AvgOccupants   float64          `json:"moyenneOccupants"`
	HappixByType   map[string]int64 `json:"happixByType"`
}
