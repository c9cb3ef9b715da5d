package service

// PasswordCredential is the view of a stored password the hasher needs.
type PasswordCredential interface {
	GetAlgo() string
	GetHash() []byte
	GetSalt() []byte
	GetParamsJSON() []byte
	GetPasswordVer() int
}

type PasswordService interface {
	Hash(password string) (hash, salt, paramsJSON []byte, algo string, ver int, err error)
	Verify(password string, cred PasswordCredential) (rehashNeeded bool, ok bool)
}
