package types

type Official struct {
	Envelope
	ID       string `json:"__official_id"`
	Name     string `json:"official_name"`
	Position string `json:"position"`
	Contact  string `json:"contact"`
}

func (o *Official) Sheet() SheetType { return SheetOfficials }
func (o *Official) RecordID() string { return o.ID }
func (o *Official) SetRecordID(id string) { o.ID = id }

func (o *Official) Validate() error {
	if err := required("official_name", o.Name); err != nil {
		return err
	}
	return required("position", o.Position)
}

type Hotline struct {
	Envelope
	ID             string `json:"__hotline_id"`
	ServiceName    string `json:"service_name"`
	PhoneNumber    string `json:"phone_number"`
	Description    string `json:"hotline_description"`
	AvailableHours string `json:"available_hours"`
}

func (h *Hotline) Sheet() SheetType { return SheetHotlines }
func (h *Hotline) RecordID() string { return h.ID }
func (h *Hotline) SetRecordID(id string) { h.ID = id }

func (h *Hotline) Validate() error {
	if err := required("service_name", h.ServiceName); err != nil {
		return err
	}
	return required("phone_number", h.PhoneNumber)
}

type Household struct {
	Envelope
	ID              string `json:"__household_id"`
	HeadOfHousehold string `json:"head_of_household"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
}

func (h *Household) Sheet() SheetType { return SheetHouseholds }
func (h *Household) RecordID() string { return h.ID }
func (h *Household) SetRecordID(id string) { h.ID = id }

func (h *Household) Validate() error {
	if err := required("head_of_household", h.HeadOfHousehold); err != nil {
		return err
	}
	return required("address", h.Address)
}
