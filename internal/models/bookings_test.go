package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func TestBookingTransitionTable(t *testing.T) {
	allowed := map[[2]BookingStatus]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusCancelled}: true,
	}
	all := []BookingStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]BookingStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: got %v want %v", from, to, got, want)
			}
		}
	}
	if !StatusCompleted.IsTerminal() || !StatusCancelled.IsTerminal() {
		t.Error("completed and cancelled must be terminal")
	}
	if StatusPending.IsTerminal() || BookingStatus("archived").Valid() {
		t.Error("unexpected status classification")
	}
}

func TestBookingMapsURL(t *testing.T) {
	lat, lng := 29.3375, 48.0013
	b := &Booking{Latitude: &lat, Longitude: &lng}
	if got := b.MapsURL(); got != "https://www.google.com/maps?q=29.3375,48.0013" {
		t.Errorf("unexpected maps url %q", got)
	}
	b.Longitude = nil
	if b.HasCoordinates() || b.MapsURL() != "" {
		t.Error("a single coordinate must not produce a map link")
	}
}

func TestBookingEffectiveTime(t *testing.T) {
	b := &Booking{PreferredTime: "10:00 AM"}
	if b.EffectiveTime() != "10:00 AM" {
		t.Errorf("expected preferred time, got %q", b.EffectiveTime())
	}
	confirmed := "11:30 AM"
	b.ConfirmedTime = &confirmed
	if b.EffectiveTime() != confirmed {
		t.Errorf("expected confirmed time, got %q", b.EffectiveTime())
	}
}

func validInput() BookingInput {
	serviceID := int64(1)
	return BookingInput{
		CustomerName:   "Fatima",
		WhatsAppNumber: "965 5123 4567",
		CarType:        "SUV",
		Area:           "Salmiya",
		FullAddress:    "Block 10, Street 5, House 12",
		PreferredDate:  "2026-10-20",
		PreferredTime:  "10:00 AM",
		ServiceID:      &serviceID,
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	out := map[string]string{}
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func TestBookingInputValidation(t *testing.T) {
	in := validInput()
	if errs := fieldErrors(t, Validate.Struct(in)); len(errs) != 0 {
		t.Fatalf("expected valid input, got %v", errs)
	}

	in.WhatsAppNumber = "123 4567"
	in.Area = "Riyadh"
	in.PreferredTime = "07:00 PM"
	in.PreferredDate = "20/10/2026"
	errs := fieldErrors(t, Validate.Struct(in))
	for field, tag := range map[string]string{
		"whatsapp_number": "kwphone",
		"area":            "area",
		"preferred_time":  "timeslot",
		"preferred_date":  "datetime",
	} {
		if errs[field] != tag {
			t.Errorf("field %s: expected tag %s, got %q", field, tag, errs[field])
		}
	}
}

func TestBookingInputCoordinatesTogether(t *testing.T) {
	in := validInput()
	lat := 29.3
	in.Latitude = &lat
	errs := fieldErrors(t, Validate.Struct(in))
	if errs["longitude"] != "required_with" {
		t.Errorf("expected longitude required_with error, got %v", errs)
	}

	lng := 200.0
	in.Longitude = &lng
	errs = fieldErrors(t, Validate.Struct(in))
	if errs["longitude"] != "longitude" {
		t.Errorf("expected longitude range error, got %v", errs)
	}
}

func TestBookingJSONKeepsNullService(t *testing.T) {
	raw := []byte(`[{"id":7,"customer_name":"Ali","status":"pending","service_id":null,"service":null}]`)
	b, err := firstBooking(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Service != nil || b.ServiceID != nil {
		t.Errorf("expected nil service, got %+v", b.Service)
	}
	out, _ := json.Marshal(b)
	var decoded map[string]interface{}
	_ = json.Unmarshal(out, &decoded)
	if v, ok := decoded["service"]; !ok || v != nil {
		t.Errorf("expected explicit null service in JSON, got %v", decoded["service"])
	}

	if _, err := firstBooking([]byte(`[]`)); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestServiceDecodesNumericPrice(t *testing.T) {
	s, err := firstService([]byte(`[{"id":1,"name_en":"Exterior","name_ar":"خارجي","price":1.5,"is_active":true}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Price.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("unexpected price %s", s.Price)
	}
	if s.Name("ar") != "خارجي" || s.Name("en") != "Exterior" {
		t.Errorf("unexpected localized names")
	}
}

func TestServicePatchColumns(t *testing.T) {
	name := "Interior"
	price := decimal.RequireFromString("2.25")
	active := false
	p := ServicePatch{NameEn: &name, Price: &price, IsActive: &active}
	cols := p.Columns()
	if len(cols) != 3 || cols["name_en"] != "Interior" || cols["price"] != "2.250" || cols["is_active"] != false {
		t.Errorf("unexpected columns %v", cols)
	}
}
