package utils

import "testing"

type sampleForm struct {
	Name     string  `validate:"required,nameok"`
	Email    string  `validate:"required,email"`
	Phone    string  `validate:"phoneok"`
	Password string  `validate:"required,pwdmin"`
	Confirm  string  `validate:"eqfield=Password"`
	Amount   float64 `validate:"required"`
}

func valid() sampleForm {
	return sampleForm{
		Name:     "Ali Raza",
		Email:    "ali@example.com",
		Phone:    "+923001234567",
		Password: "secret1",
		Confirm:  "secret1",
		Amount:   500,
	}
}

func TestValidateStruct(t *testing.T) {
	f := valid()
	if err := ValidateStruct(&f); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*sampleForm)
	}{
		{"missing name", func(f *sampleForm) { f.Name = "" }},
		{"bad email", func(f *sampleForm) { f.Email = "not-an-email" }},
		{"bad phone", func(f *sampleForm) { f.Phone = "abc" }},
		{"short password", func(f *sampleForm) { f.Password = "abc"; f.Confirm = "abc" }},
		{"confirm mismatch", func(f *sampleForm) { f.Confirm = "other1" }},
		{"zero amount", func(f *sampleForm) { f.Amount = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := valid()
			tc.mutate(&f)
			if err := ValidateStruct(&f); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestRoundMoney(t *testing.T) {
	if got := RoundMoney(10.006); got != 10.01 {
		t.Fatalf("RoundMoney(10.006) = %v, want 10.01", got)
	}
	if got := RoundMoney(899.9999999); got != 900 {
		t.Fatalf("RoundMoney(899.9999999) = %v, want 900", got)
	}
}
