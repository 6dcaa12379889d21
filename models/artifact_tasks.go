package models

import (
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArtifactTasks keeps the last result of every artifact task for a product
type ArtifactTasks struct {
	ProductID uint32 `gorm:"primaryKey;autoIncrement:false"`
	Status    string `gorm:"type:varchar(1024)"` // Comma-separated pairs of task and status, e.g. "banner:2,comic:0"
	UpdatedAt int64
}

func (at *ArtifactTasks) StatusMap() map[string]int {
	result := map[string]int{}
	if at == nil || at.Status == "" {
		return result
	}
	for _, v := range strings.Split(at.Status, ",") {
		current := strings.Split(v, ":")
		if len(current) != 2 {
			log.Printf("Task status contains invalid chars, product: %d, status: %s", at.ProductID, at.Status)
			continue
		}
		result[current[0]], _ = strconv.Atoi(current[1])
	}
	return result
}

// UpdateWith merges statusMap over the current statuses
func (at *ArtifactTasks) UpdateWith(statusMap map[string]int) {
	merged := at.StatusMap()
	for k, v := range statusMap {
		merged[k] = v
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, k+":"+strconv.Itoa(merged[k]))
	}
	at.Status = strings.Join(result, ",")
}

func GetArtifactTasks(tx *gorm.DB, uid uint32) (*ArtifactTasks, error) {
	return first[ArtifactTasks](tx, "product_id = ?", uid)
}

// SaveArtifactTasks merges statusMap into the stored statuses of the product
func SaveArtifactTasks(tx *gorm.DB, uid uint32, statusMap map[string]int) error {
	current, err := GetArtifactTasks(tx, uid)
	if err != nil {
		return err
	}
	if current == nil {
		current = &ArtifactTasks{ProductID: uid}
	}
	current.UpdateWith(statusMap)
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(current).Error
}
