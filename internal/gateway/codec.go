package gateway

import (
	"encoding/json"
	"strconv"

	"barangay/pkg/types"

	"github.com/sirupsen/logrus"
)

func (c *Client) decodeRecords(raw []map[string]any) []types.Record {
	records := make([]types.Record, 0, len(raw))
	for i, entry := range raw {
		record, err := types.DecodeRecord(Normalize(entry))
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"index":      i,
				"sheet_type": entry[types.FieldSheetType],
			}).Warn("skipping undecodable record")
			continue
		}
		records = append(records, record)
	}

	return records
}

// Normalize renders every value of a raw gateway record as text. Spreadsheet
// backed gateways hand back numbers and booleans for cells that the portal
// treats as text.
func Normalize(entry map[string]any) map[string]string {
	out := make(map[string]string, len(entry))
	for k, v := range entry {
		out[k] = text(v)
	}
	return out
}

func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
