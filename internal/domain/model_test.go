package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAdvanceToSingleStep(t *testing.T) {
	assert.True(t, StatusWaiting.CanAdvanceTo(StatusPreparing))
	assert.True(t, StatusPreparing.CanAdvanceTo(StatusReady))
	assert.True(t, StatusReady.CanAdvanceTo(StatusServed))

	assert.False(t, StatusWaiting.CanAdvanceTo(StatusReady), "no skipping")
	assert.False(t, StatusPreparing.CanAdvanceTo(StatusWaiting), "no regressing")
	assert.False(t, StatusServed.CanAdvanceTo(StatusServed), "served is terminal")
	assert.False(t, StatusCart.CanAdvanceTo(StatusPlaced), "cart is not in the pipeline")
	assert.False(t, StatusReady.CanAdvanceTo(LineStatus("eaten")))
}

func TestStatusPredicates(t *testing.T) {
	assert.False(t, StatusCart.Confirmed())
	assert.False(t, StatusPlaced.Confirmed())
	assert.True(t, StatusWaiting.Confirmed())

	assert.False(t, StatusPlaced.Progressed())
	assert.True(t, StatusWaiting.Progressed())
	assert.False(t, LineStatus("bogus").Valid())
}

func TestSameTermsIgnoresParticipantOrder(t *testing.T) {
	s := SplitAgreement{
		OriginalPrice: 135,
		SplitCount:    3,
		Participants:  []string{"Aziz", "Dana", "Omar"},
	}

	assert.True(t, s.SameTerms(135, 3, []string{"Omar", "Aziz", "Dana"}))
	assert.False(t, s.SameTerms(135, 3, []string{"Aziz", "Dana", "Nour"}))
	assert.False(t, s.SameTerms(120, 3, []string{"Aziz", "Dana", "Omar"}))
	assert.False(t, s.SameTerms(135, 2, []string{"Aziz", "Dana"}))
}

func TestMoneyEqualWithinEpsilon(t *testing.T) {
	assert.True(t, MoneyEqual(45.0, 45.004))
	assert.False(t, MoneyEqual(45.0, 45.02))
	assert.Equal(t, 51.3, Round2(51.299999))
}
