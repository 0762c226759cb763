// Package instance tokenizes SVR_RESP payload text into instance records.
//
// The payload is a run of key;value; pairs. Each record ends with an empty
// token, so a single record reads "k1;v1;k2;v2;;". CLNT_UCAST_EX replies carry
// several records back to back.
package instance
