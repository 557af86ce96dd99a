package partnership

import "testing"

func TestInviteRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     InviteRequest
		wantErr bool
	}{
		{"valid", InviteRequest{TargetCompanyName: "Acme", ContactName: "Jean", ContactEmail: "jean@acme.example"}, false},
		{"missing target", InviteRequest{ContactName: "Jean", ContactEmail: "jean@acme.example"}, true},
		{"missing contact name", InviteRequest{TargetCompanyName: "Acme", ContactEmail: "jean@acme.example"}, true},
		{"missing email", InviteRequest{TargetCompanyName: "Acme", ContactName: "Jean"}, true},
		{"malformed email", InviteRequest{TargetCompanyName: "Acme", ContactName: "Jean", ContactEmail: "not-an-email"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInviteRequestAccess(t *testing.T) {
	req := InviteRequest{}
	if got := req.Access(); !got.AllowViewing || !got.AllowReporting {
		t.Errorf("default access = %+v, want full grant", got)
	}

	custom := &EquipmentAccess{AllowViewing: true, RestrictedEquipmentIDs: []string{"eq-1"}}
	req.EquipmentAccess = custom
	if got := req.Access(); got.AllowReporting || !got.Restricted("eq-1") {
		t.Errorf("custom access not honored: %+v", got)
	}
}

func TestEquipmentAccessRestricted(t *testing.T) {
	a := EquipmentAccess{RestrictedEquipmentIDs: []string{"eq-1", "eq-2"}}
	if !a.Restricted("eq-1") {
		t.Error("eq-1 should be restricted")
	}
	if a.Restricted("eq-3") {
		t.Error("eq-3 should not be restricted")
	}
}

func TestOtherParty(t *testing.T) {
	p := Partnership{InitiatorID: "comp-a", PartnerID: "comp-b"}

	if other, ok := p.OtherParty("comp-a"); !ok || other != "comp-b" {
		t.Errorf("OtherParty(comp-a) = %q, %v", other, ok)
	}
	if other, ok := p.OtherParty("comp-b"); !ok || other != "comp-a" {
		t.Errorf("OtherParty(comp-b) = %q, %v", other, ok)
	}
	if _, ok := p.OtherParty("comp-z"); ok {
		t.Error("outsider reported as party")
	}
}
