/*

Package lorawan provides the bit-exact codec (C1) for the end-device MAC
frame formats: join-request, rejoin-request (types 0/1/2), join-accept and
data (uplink/downlink, confirmed/unconfirmed).

Every frame element implements MarshalBinary, plus an UnmarshalBinary that
also takes the uplink/downlink direction where the wire layout depends on
it (MAC commands share a CID between request and answer but not always a
payload shape).

This package performs no cryptography. MIC calculation, FRMPayload/FOpts
encryption and key derivation live in package cryptoengine, which operates
on the byte slices this package produces and consumes.

*/
package lorawan
