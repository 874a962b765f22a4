package exercises

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// LoadCatalogCSV reads the system exercise catalog from a CSV reader.
// Record format: NAME;PRIMARY_MUSCLE;SECONDARY_MUSCLES, where secondary
// muscles are comma separated and both muscle fields may be empty.
func LoadCatalogCSV(catalogCsvReader *csv.Reader) ([]Exercise, error) {
	log.Println("reading exercise catalog CSV ...")

	catalogCsvReader.Comma = ';'

	var entries []Exercise
	for {
		record, err := catalogCsvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(record) != 3 {
			return nil, fmt.Errorf("record [%s] does not have 3 elements", record)
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			return nil, fmt.Errorf("record [%s] has an empty exercise name", record)
		}

		entry := Exercise{
			Name: name,
		}

		if primaryMuscle := strings.TrimSpace(record[1]); primaryMuscle != "" {
			entry.PrimaryMuscle = &primaryMuscle
		}

		if secondaryRaw := strings.TrimSpace(record[2]); secondaryRaw != "" {
			for _, muscle := range strings.Split(secondaryRaw, ",") {
				if muscle = strings.TrimSpace(muscle); muscle != "" {
					entry.SecondaryMuscles = append(entry.SecondaryMuscles, muscle)
				}
			}
		}

		entries = append(entries, entry)
	}

	log.Printf("exercise catalog CSV read %d entries", len(entries))

	return entries, nil
}
