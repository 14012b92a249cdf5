package contentfilter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		wantKind string
	}{
		{name: "phone", text: "Me liga no 11999990000", wantKind: KindPhone},
		{name: "formatted_phone", text: "fone (27) 3333-4444", wantKind: KindPhone},
		{name: "email", text: "Manda email para contato@teste.com", wantKind: KindEmail},
		{name: "phone_wins_over_email", text: "11999990000 ou a@b.com", wantKind: KindPhone},
		{name: "clean", text: "Olá, sou credenciado e posso resolver em 2 dias."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Validate(tc.text)
			if tc.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.text, out)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLeakageDetected))
			var leak *LeakageError
			require.True(t, errors.As(err, &leak))
			assert.Equal(t, tc.wantKind, leak.Kind)
		})
	}
}

func TestLeakageMessages(t *testing.T) {
	_, err := Validate("Me liga no 11999990000")
	assert.EqualError(t, err, "Sensitive info (phone) detected in message")

	_, err = Validate("Manda email para contato@teste.com")
	assert.EqualError(t, err, "Sensitive info (email) detected in message")
}
