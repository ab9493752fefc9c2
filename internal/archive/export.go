package archive

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ashwinrao/auction-arena/internal/domain"
)

// WriteCSV renders a finished auction as owner/player/price rows. The owner name
// appears only on the first row of each squad, with a blank row between owners,
// so the sheet reads as one block per squad.
func WriteCSV(w io.Writer, rec *domain.ArchivedAuction) error {
	participants, err := DecodeParticipants(rec)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Owner Name", "Player Name", "Price (Pts)"}); err != nil {
		return err
	}

	for _, p := range participants {
		if len(p.Squad) == 0 {
			if err := cw.Write([]string{p.DisplayName, "No Players", "0"}); err != nil {
				return err
			}
		} else {
			for i, acq := range p.Squad {
				owner := ""
				if i == 0 {
					owner = p.DisplayName
				}
				if err := cw.Write([]string{owner, acq.Name, strconv.Itoa(acq.Price)}); err != nil {
					return err
				}
			}
		}
		if err := cw.Write([]string{"", "", ""}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
